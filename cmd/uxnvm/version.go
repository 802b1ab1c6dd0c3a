package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the caller's installed uxnvm version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the currently installed uxnvm version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(currentReleaseVersion)
	},
}
