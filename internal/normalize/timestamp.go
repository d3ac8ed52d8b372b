package normalize

import (
	"fmt"
	"strings"
	"time"

	apperrors "dashboard-engagement/server/pkg/errors"
)

// ISOLayout is the ISO-8601 form (no zone) written to the database; Postgres
// reads it in the session time zone.
const ISOLayout = "2006-01-02T15:04:05"

// CheckInLayout is the Google Forms export timestamp, e.g. "11/21/2025 17:33:16".
// Month, day and hour may be one or two digits.
const CheckInLayout = "1/2/2006 15:04:05"

// Accepted event start formats, tried in order. The first is the HTML
// datetime-local value the dashboard form submits.
var eventStartLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// ErrEmptyEventStart is returned by ParseEventStart for blank input.
var ErrEmptyEventStart = fmt.Errorf("%w: starts_at is empty", apperrors.ErrInvalidInput)

// ParseEventStart converts an event start time to ISO-8601. Input matching none of
// the known layouts is returned trimmed but otherwise unchanged, leaving the final
// say to the database.
func ParseEventStart(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyEventStart
	}
	for _, layout := range eventStartLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISOLayout), nil
		}
	}
	return s, nil
}

// ParseCheckIn parses a check-in timestamp in CheckInLayout. Blank input means
// "no timestamp" and returns (nil, nil). Anything else that does not parse returns
// an error wrapping ErrMalformedTimestamp.
func ParseCheckIn(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(CheckInLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not in the expected format MM/DD/YYYY HH:MM:SS",
			apperrors.ErrMalformedTimestamp, s)
	}
	iso := t.Format(ISOLayout)
	return &iso, nil
}
