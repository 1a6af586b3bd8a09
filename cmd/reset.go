package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <name>",
	Short: "Reset a counter",
	Long:  "Set a counter's time to zero, move its reference date to now and pause it. An unknown name is created.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	e := newEngine(s, counterFlags{})
	defer e.Close()

	e.SelectName(cmd.Context(), args[0])
	if err := e.Reset(); err != nil {
		return err
	}
	e.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", e.Snapshot().Name)
	return nil
}
