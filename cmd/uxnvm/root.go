package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// currentReleaseVersion is printed by the version subcommand.
const currentReleaseVersion = "v0.1.0"

var logLevel string
var jit bool

// rootCmd is the base for all commands.
var rootCmd = &cobra.Command{
	Use:   "uxnvm [command]",
	Short: "uxnvm is a Uxn/Varvara virtual machine",
	Long:  "uxnvm is a Uxn/Varvara virtual machine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `uxnvm help` for more information")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "log level: error, warn, info, debug, trace")
	runCmd.Flags().BoolVar(&jit, "jit", false, "select the JIT back-end instead of the interpreter (semantics are identical)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs uxnvm according to the user's command/subcommand/flags.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
