package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadTimestamp marks a caller-supplied timestamp that matched none of the
// accepted representations. It aborts the run before any fetching starts.
var ErrBadTimestamp = errors.New("unrecognized timestamp")

const (
	compactDateLayout  = "20060102"
	readableDateLayout = "January 2, 2006"
)

// DateWindow is the pair of calendar dates one run covers: the reference date
// and the day before it, both rendered compact (YYYYMMDD) and human-readable.
type DateWindow struct {
	Reference        time.Time `json:"-"`
	Previous         time.Time `json:"-"`
	ReferenceCompact string    `json:"reference_date"`
	PreviousCompact  string    `json:"previous_date"`
	ReferenceLabel   string    `json:"reference_date_readable"`
	PreviousLabel    string    `json:"previous_date_readable"`
}

// ResolveWindow computes the date window for a run. An empty timestamp means
// "now" in the given location; otherwise the timestamp may be an 8-digit date,
// an ISO date or datetime, or an epoch-seconds value. All arithmetic happens
// in the single fixed location so the previous day is always exactly one
// calendar day back.
func ResolveWindow(timestamp string, loc *time.Location) (DateWindow, error) {
	if loc == nil {
		loc = time.UTC
	}

	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return newWindow(time.Now().In(loc)), nil
	}

	ref, err := parseTimestamp(timestamp, loc)
	if err != nil {
		return DateWindow{}, err
	}
	return newWindow(ref.In(loc)), nil
}

func newWindow(ref time.Time) DateWindow {
	prev := ref.AddDate(0, 0, -1)
	return DateWindow{
		Reference:        ref,
		Previous:         prev,
		ReferenceCompact: ref.Format(compactDateLayout),
		PreviousCompact:  prev.Format(compactDateLayout),
		ReferenceLabel:   ref.Format(readableDateLayout),
		PreviousLabel:    prev.Format(readableDateLayout),
	}
}

func parseTimestamp(timestamp string, loc *time.Location) (time.Time, error) {
	// Exactly eight digits is always a compact date, never epoch seconds.
	if len(timestamp) == 8 && isDigits(timestamp) {
		ref, err := time.ParseInLocation(compactDateLayout, timestamp, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, timestamp)
		}
		return ref, nil
	}

	if isDigits(timestamp) {
		secs, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, timestamp)
		}
		return time.Unix(secs, 0), nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if ref, err := time.ParseInLocation(layout, timestamp, loc); err == nil {
			return ref, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, timestamp)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
