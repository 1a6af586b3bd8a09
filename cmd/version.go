package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TockVersion is the current version of tock
const TockVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tock",
	Long:  "Print the version number of tock",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tock version %s\n", TockVersion)
	},
}

func init() {
	rootCmd.Version = TockVersion
	rootCmd.SetVersionTemplate("tock version {{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
}
