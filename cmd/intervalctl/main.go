package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{}

	rootCmd := &cobra.Command{
		Use:   "intervalctl",
		Short: "Manage and run interval workout presets",
		Long: `intervalctl manages the presets shared with the IntervalTimer desktop app
and runs workouts in the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&env.configDir, "config-dir", "", "Settings and presets directory (default: user config dir)")
	flags.StringVar(&env.logLevel, "log-level", "", "Log level: silent, error, info, debug (default: from settings)")
	flags.StringVar(&env.backend, "store", "", "Preset store backend: yaml or sqlite (default: from settings)")

	rootCmd.AddCommand(newListCmd(env))
	rootCmd.AddCommand(newShowCmd(env))
	rootCmd.AddCommand(newNewCmd(env))
	rootCmd.AddCommand(newQuickCmd(env))
	rootCmd.AddCommand(newRunCmd(env))
	rootCmd.AddCommand(newShareCmd(env))
	rootCmd.AddCommand(newImportCmd(env))
	rootCmd.AddCommand(newRenameCmd(env))
	rootCmd.AddCommand(newDuplicateCmd(env))
	rootCmd.AddCommand(newDeleteCmd(env))

	return rootCmd
}
