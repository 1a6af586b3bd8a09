package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chris/tock/pkg/models"
)

// TestExport_WritesYAML tests that every counter is exported, countdowns included
func TestExport_WritesYAML(t *testing.T) {
	dbPath := setupCountersDB(t,
		models.Counter{Name: "Read", Mode: models.CountUp, Reference: ref, Elapsed: 3600},
		models.Counter{Name: "Exam", Mode: models.CountDown, Reference: ref, Elapsed: 10},
	)

	output, err := executeCommand(t, "export", "--db", dbPath)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Exam", decoded[0]["name"])
	assert.Equal(t, "countdown", decoded[0]["mode"])
	assert.Equal(t, "Read", decoded[1]["name"])
	assert.Equal(t, 3600, decoded[1]["elapsed"])
}
