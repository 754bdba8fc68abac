package pipeline

import "testing"

func TestDeriveWinner(t *testing.T) {
	cases := []struct {
		name  string
		score string
		want  string
	}{
		{"team1 wins", "4-1", "Arsenal"},
		{"team2 wins", "0-2", "Chelsea"},
		{"draw", "2-2", WinnerDraw},
		{"upcoming", "upcoming", WinnerUpcoming},
		{"upcoming mixed case", "Upcoming", WinnerUpcoming},
		{"missing separator", "41", WinnerUnknown},
		{"non-numeric", "four-one", WinnerUnknown},
		{"half parseable", "3-abandoned", WinnerUnknown},
		{"empty", "", WinnerUnknown},
		{"spaced score", " 3 - 1 ", "Arsenal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveWinner(tc.score, "Arsenal", "Chelsea")
			if got != tc.want {
				t.Fatalf("DeriveWinner(%q) = %q, want %q", tc.score, got, tc.want)
			}
		})
	}
}

func TestDeriveWinnerIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := DeriveWinner("1-0", "Lyon", "Lille"); got != "Lyon" {
			t.Fatalf("run %d: got %q, want Lyon", i, got)
		}
	}
}

func TestMatchCompleted(t *testing.T) {
	cases := []struct {
		winner string
		want   bool
	}{
		{"Arsenal", true},
		{WinnerDraw, true},
		{WinnerUpcoming, false},
		{WinnerUnknown, false},
		{"", false},
	}
	for _, tc := range cases {
		m := Match{Winner: tc.winner}
		if m.Completed() != tc.want {
			t.Errorf("Completed() with winner %q = %v, want %v", tc.winner, m.Completed(), tc.want)
		}
	}
}
