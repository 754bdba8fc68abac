package pipeline

import (
	"strconv"
	"strings"
)

// DeriveWinner computes a match winner from its score string. Extraction
// never supplies this field: model arithmetic is not trusted, so the winner
// is always recomputed here. The score is either the literal "upcoming" or
// "<int>-<int>"; anything else yields Unknown.
func DeriveWinner(score, team1, team2 string) string {
	score = strings.TrimSpace(score)
	if strings.EqualFold(score, ScoreUpcoming) {
		return WinnerUpcoming
	}

	left, right, ok := strings.Cut(score, "-")
	if !ok {
		return WinnerUnknown
	}

	s1, err1 := strconv.Atoi(strings.TrimSpace(left))
	s2, err2 := strconv.Atoi(strings.TrimSpace(right))
	if err1 != nil || err2 != nil {
		return WinnerUnknown
	}

	switch {
	case s1 > s2:
		return team1
	case s2 > s1:
		return team2
	default:
		return WinnerDraw
	}
}
