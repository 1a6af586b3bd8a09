package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Mode selects how a counter's elapsed time evolves
type Mode string

const (
	CountUp   Mode = "countup"
	CountDown Mode = "countdown"
)

// ParseMode accepts the stored spellings plus the short forms "up" and "down"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "countup", "count-up", "up":
		return CountUp, nil
	case "countdown", "count-down", "down":
		return CountDown, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be countup or countdown", s)
	}
}

// String returns the stored spelling
func (m Mode) String() string {
	return string(m)
}

// Label is the human-readable heading for the mode
func (m Mode) Label() string {
	if m == CountDown {
		return "Countdown"
	}
	return "Counting Up"
}

// Counter is a named timer. Name is the key under which it is stored.
type Counter struct {
	Name      string
	Mode      Mode
	Reference time.Time // count-down target; informational for count-up
	Elapsed   int64     // seconds; remaining seconds for count-down
	IsRunning bool
}

// NewCounter creates an idle counter with no accumulated time
func NewCounter(name string, mode Mode, now time.Time) Counter {
	return Counter{
		Name:      CanonicalName(name),
		Mode:      mode,
		Reference: now,
	}
}

// CanonicalName trims surrounding whitespace and normalizes to NFC so that
// visually identical names address the same counter
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Remaining returns whole seconds until the reference instant, never negative
func (c Counter) Remaining(now time.Time) int64 {
	d := c.Reference.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// targetLayouts are the absolute forms ParseTarget accepts, in local time
// unless the layout carries a zone
var targetLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTarget reads a reference instant. A Go duration such as "90m" is an
// offset from now; otherwise s must be RFC3339 or a local "2006-01-02[ 15:04[:05]]".
func ParseTarget(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty target")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	for _, layout := range targetLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid target %q: use a duration like 90m or a date like 2026-03-01 12:00", s)
}
