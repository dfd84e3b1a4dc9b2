package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/callgen/cmd/callgen/commands"
	"github.com/teranos/callgen/config"
	"github.com/teranos/callgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "callgen",
	Short: "callgen - dispatch stub generator for callable interfaces",
	Long: `callgen - dispatch stub generator for callable interfaces.

callgen reads an interface descriptor and generates, per method, the types
and glue a host needs to call it: decoded Args, a transparent Return
wrapper, a zero-size carrier of the generic parameters and one entry point
per bound receiver.

Available commands:
  generate - Generate stubs from descriptors
  check    - Check that generated stubs are up to date
  docs     - Generate markdown documentation
  run      - Call an entry point of a wasm contract
  version  - Show version information

Examples:
  callgen generate message.yaml
  callgen check message.yaml
  callgen run message.wasm method_b '{"my_string":"x","my_bool":true}'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs := false
		if cfg, err := config.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logger.SetVerbosity(verbosity)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to callgen.toml (default: nearest one upwards)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.DocsCmd)
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
