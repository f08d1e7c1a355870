// Package cmd provides the command-line interface of deepsleep.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/deepsleep/config"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deepsleep",
	Short: "Simulate a board that counts its wake-ups across deep sleeps.",
	Long: `deepsleep runs a simulated microcontroller that increments a ` +
		`retained boot counter at every wake-up, blinks an LED for a few ` +
		`seconds, arms a wake timer and goes back to deep sleep. Settings ` +
		`come from DEEPSLEEP_* environment variables, an optional .env file ` +
		`and flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"Env file with DEEPSLEEP_* settings (default .env if present)")
	rootCmd.PersistentFlags().String("retention", "",
		"Where retention memory is kept: memory, file or sqlite")
	rootCmd.PersistentFlags().String("retention-path", "",
		"File that holds retention memory")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadConfig reads the configuration. Flags of the command that were set
// override the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(envFile, cmd.Flags())
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
