package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chris/tock/internal/aggregate"
	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/internal/summary"
)

var (
	listAll   bool
	listNames bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List counters",
	Long: `Print one snapshot of the board: every count-up counter with its days,
hours, minutes and seconds. --all prints a table of every counter, countdowns
included; --names prints only the names.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Show every counter as a table, countdowns included")
	listCmd.Flags().BoolVar(&listNames, "names", false, "Print counter names only, one per line")
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listNames:
		for _, name := range s.Names(ctx) {
			fmt.Fprintln(out, name)
		}

	case listAll:
		counters, err := s.Load(ctx)
		if err != nil {
			return err
		}
		for name, c := range counters {
			c.Reference = c.Reference.Local()
			counters[name] = c
		}
		fmt.Fprint(out, summary.FormatTable(counters))

	default:
		board := aggregate.New(s).Snapshot(ctx)
		opts := summary.FormatOptions{
			Date:    format.DateLabel(time.Now()),
			NoColor: noColor(out),
		}
		fmt.Fprint(out, summary.FormatBoard(board, opts))
	}

	return nil
}
