package pipeline

// Score value marking a match that has not kicked off yet.
const ScoreUpcoming = "upcoming"

// Winner values that are not a team name.
const (
	WinnerUpcoming = "Upcoming"
	WinnerDraw     = "Draw"
	WinnerUnknown  = "Unknown"
)

// Match represents a single schedule entry extracted from a day's page.
// Winner is always derived locally from Score; Report is filled in by the
// report enrichment stage for completed matches only.
type Match struct {
	League   string `json:"league"`
	Team1    string `json:"team1"`
	Team2    string `json:"team2"`
	Score    string `json:"score"`
	MatchURL string `json:"match_url"`
	Winner   string `json:"winner"`
	Report   string `json:"report"`
}

// Completed reports whether the match finished with a usable result.
func (m Match) Completed() bool {
	return m.Winner != "" && m.Winner != WinnerUpcoming && m.Winner != WinnerUnknown
}

// StandingsRequest names a competition whose standings page should be fetched.
type StandingsRequest struct {
	Competition string `json:"competition"`
	URL         string `json:"url"`
}

// Standing holds one competition's fetched standings page. HTML is empty when
// the fetch failed; the failure never aborts the run.
type Standing struct {
	Competition string `json:"competition"`
	URL         string `json:"url"`
	HTML        string `json:"html"`
}

// Extraction is the structured output of one day's schedule extraction.
type Extraction struct {
	Matches       []Match            `json:"matches"`
	StandingsURLs []StandingsRequest `json:"standings_urls"`
}

// Result is the terminal artifact of one pipeline run.
type Result struct {
	RunID        string     `json:"run_id"`
	Window       DateWindow `json:"window"`
	Matches      []Match    `json:"matches"`
	Standings    []Standing `json:"standings"`
	Notification string     `json:"sms_notification"`
}
