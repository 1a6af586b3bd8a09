package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	saveMode   string
	saveTarget string
)

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Create or update a counter without running it",
	Long: `Save a counter under name. An existing counter keeps its time; --mode and
--target change it. A new counter starts at zero with the reference set to now
unless --target is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringVar(&saveMode, "mode", "countup", "Counter mode: countup or countdown")
	saveCmd.Flags().StringVar(&saveTarget, "target", "", "Reference date or countdown target (90m, RFC3339 or 2006-01-02 15:04)")
}

func runSave(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	flags, err := parseCounterFlags(cmd, saveMode, saveTarget)
	if err != nil {
		return err
	}

	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	e := newEngine(s, flags)
	defer e.Close()

	e.SelectName(cmd.Context(), args[0])
	flags.apply(e)
	if err := e.Save(); err != nil {
		return err
	}
	e.Flush()

	c := e.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", c.Name, c.Mode)
	return nil
}
