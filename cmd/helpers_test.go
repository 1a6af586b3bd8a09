package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/chris/tock/internal/db"
	"github.com/chris/tock/internal/store"
	"github.com/chris/tock/pkg/models"
)

// resetFlags restores every flag to its default, including the Changed bit,
// since rootCmd is shared across tests
func resetFlags() {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// executeCommand runs tock with args and returns stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

// setupCountersDB creates an initialized database holding counters
func setupCountersDB(t *testing.T, counters ...models.Counter) string {
	t.Helper()
	t.Setenv("TOCK_DB", "")
	t.Setenv("TOCK_DRIVER", "sqlite")

	dbPath := filepath.Join(t.TempDir(), "counters.db")
	database, err := db.NewForTesting(dbPath)
	require.NoError(t, err)
	defer database.Close()

	s := store.New(database)
	for _, c := range counters {
		require.NoError(t, s.Put(context.Background(), c))
	}
	return dbPath
}

// loadCounter reads one counter back from dbPath
func loadCounter(t *testing.T, dbPath, name string) models.Counter {
	t.Helper()
	database, err := db.New(dbPath)
	require.NoError(t, err)
	defer database.Close()

	c, found, err := store.New(database).Get(context.Background(), name)
	require.NoError(t, err)
	require.True(t, found, "counter %q should exist", name)
	return c
}

// writeRaw stores a raw collection record, bypassing validation
func writeRaw(t *testing.T, dbPath, raw string) {
	t.Helper()
	database, err := db.New(dbPath)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.Set(context.Background(), store.DefaultKey, raw))
}
