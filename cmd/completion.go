package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chris/tock/internal/db"
	"github.com/chris/tock/internal/store"
)

func init() {
	// Register custom completions after all commands are initialized
	cobra.OnInitialize(registerCompletions)
}

func registerCompletions() {
	// --db flag: complete with .db files
	rootCmd.RegisterFlagCompletionFunc("db", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"db"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.RegisterFlagCompletionFunc("color", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp
	})

	for _, c := range []*cobra.Command{runCmd, saveCmd, resetCmd, showCmd} {
		c.ValidArgsFunction = completeCounterName
	}

	registerModeCompletions(runCmd)
	registerModeCompletions(saveCmd)
}

// getCounterNamesFromDB reads stored counter names
func getCounterNamesFromDB() []string {
	backend, err := db.Open(dbPath, cfg.Driver)
	if err != nil {
		return nil
	}
	defer backend.Close()

	// Completion output goes to the shell; keep warnings off it
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store.New(backend, store.WithLogger(quiet)).Names(context.Background())
}

// completeCounterName completes the single counter-name argument
func completeCounterName(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return getCounterNamesFromDB(), cobra.ShellCompDirectiveNoFileComp
}

func registerModeCompletions(cmd *cobra.Command) {
	cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"countup\tCount up from the reference date",
			"countdown\tCount down to the target",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
