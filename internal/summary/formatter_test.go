package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/chris/tock/internal/aggregate"
	"github.com/chris/tock/pkg/models"
)

var ref = time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// TestFormatBoard_Golden tests the scenario: "A" at 90000s and "B" at 30s running
func TestFormatBoard_Golden(t *testing.T) {
	board := aggregate.Project(map[string]models.Counter{
		"A":    {Name: "A", Mode: models.CountUp, Reference: ref, Elapsed: 90000},
		"B":    {Name: "B", Mode: models.CountUp, Reference: ref, Elapsed: 30, IsRunning: true},
		"Exam": {Name: "Exam", Mode: models.CountDown, Reference: ref, Elapsed: 10},
	})

	out := FormatBoard(board, FormatOptions{Date: "Mar 01, 2026", NoColor: true})
	newGolden(t).Assert(t, "board", []byte(out))
}

// TestFormatBoard_EmptyGolden tests the "no counters" state
func TestFormatBoard_EmptyGolden(t *testing.T) {
	out := FormatBoard(aggregate.Project(nil), FormatOptions{Date: "Mar 01, 2026", NoColor: true})
	newGolden(t).Assert(t, "board_empty", []byte(out))
}

// TestFormatBoard_OnlyCountDown tests a store with nothing counting up
func TestFormatBoard_OnlyCountDown(t *testing.T) {
	board := aggregate.Project(map[string]models.Counter{
		"Exam": {Name: "Exam", Mode: models.CountDown, Reference: ref},
	})

	out := FormatBoard(board, FormatOptions{Date: "Mar 01, 2026", NoColor: true})
	assert.Contains(t, out, "No counters counting up.")
	assert.NotContains(t, out, "No counters saved.")
}

// TestFormatBoard_SingleCounter tests the singular stat label
func TestFormatBoard_SingleCounter(t *testing.T) {
	board := aggregate.Project(map[string]models.Counter{
		"Run": {Name: "Run", Mode: models.CountUp, Reference: ref, Elapsed: 65},
	})

	out := FormatBoard(board, FormatOptions{Date: "Mar 01, 2026", NoColor: true})
	assert.Contains(t, out, "1 counter, 0 running")
	assert.Contains(t, out, "0h 1m 5s")
}

// TestFormatBoard_NoColorHasNoEscapes tests that NoColor output is plain text
func TestFormatBoard_NoColorHasNoEscapes(t *testing.T) {
	board := aggregate.Project(map[string]models.Counter{
		"Run": {Name: "Run", Mode: models.CountUp, Reference: ref, Elapsed: 65, IsRunning: true},
	})

	out := FormatBoard(board, FormatOptions{Date: "Mar 01, 2026", NoColor: true})
	assert.False(t, strings.Contains(out, "\x1b["), "no ANSI escapes expected")
}
