package commands

import (
	"github.com/spf13/cobra"
)

var docsOutput string

// DocsCmd writes markdown documentation only
var DocsCmd = &cobra.Command{
	Use:   "docs <descriptor>...",
	Short: "Generate markdown documentation for interfaces",
	Long: `Generate markdown documentation for interface descriptors.

Writes docs/<package>.md under the output directory: generic parameters,
per-method signature, receiver, wire formats, argument table and bindings.

Examples:
  callgen docs message.yaml
  callgen docs -o site/ *.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Generate.Languages = []string{"markdown"}
		// A bad post hook should not block docs.
		cfg.Generate.PostHook = ""

		outDir := outputDir(cfg, configPath)
		if docsOutput != "" {
			outDir = docsOutput
		}
		return generateAll(cmd.Context(), cfg, args, outDir)
	},
}

func init() {
	DocsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output directory (default: generate.output)")
}
