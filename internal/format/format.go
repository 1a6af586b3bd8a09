// Package format turns elapsed seconds into display strings.
// Everything here is a pure function of its arguments.
package format

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// dateLabelLayout renders like "Mar 01, 2026"
const dateLabelLayout = "%b %d, %Y"

// Span is a duration split into whole days, hours, minutes and seconds
type Span struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Clock formats seconds as HH:MM:SS. Hours do not roll over into days, so
// 100 hours is "100:00:00". Negative input formats as zero.
func Clock(s int64) string {
	if s < 0 {
		s = 0
	}
	h := s / secondsPerHour
	m := (s % secondsPerHour) / secondsPerMinute
	sec := s % secondsPerMinute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// Decompose splits s into days first, then hours, minutes and seconds of the remainder
func Decompose(s int64) Span {
	if s < 0 {
		s = 0
	}
	days := s / secondsPerDay
	s %= secondsPerDay
	hours := s / secondsPerHour
	s %= secondsPerHour
	return Span{
		Days:    days,
		Hours:   hours,
		Minutes: s / secondsPerMinute,
		Seconds: s % secondsPerMinute,
	}
}

// Total converts the span back to seconds
func (sp Span) Total() int64 {
	return sp.Days*secondsPerDay + sp.Hours*secondsPerHour + sp.Minutes*secondsPerMinute + sp.Seconds
}

// String renders the sub-day part, e.g. "1h 0m 0s"
func (sp Span) String() string {
	return fmt.Sprintf("%dh %dm %ds", sp.Hours, sp.Minutes, sp.Seconds)
}

// DaysLabel renders the day count, e.g. "1 Days"
func (sp Span) DaysLabel() string {
	return fmt.Sprintf("%d Days", sp.Days)
}

// DateLabel renders a reference instant as a short local date, e.g. "Mar 01, 2026"
func DateLabel(t time.Time) string {
	return strftime.Format(dateLabelLayout, t)
}

// TargetLabel renders an instant with its time of day, like "Mar 01, 2026 14:30"
func TargetLabel(t time.Time) string {
	return strftime.Format(dateLabelLayout+" %H:%M", t)
}
