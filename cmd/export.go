package cmd

import (
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every counter as YAML",
	Long:  "Write all stored counters, sorted by name, to stdout as YAML.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		return s.Export(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
