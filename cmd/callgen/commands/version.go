package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/callgen/display"
	"github.com/teranos/callgen/version"
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show callgen version information",
	Long: `Display the callgen version, commit, build time and platform.

Generated file headers and callgen.manifest.toml record the same version,
and descriptors may constrain it with a requires field.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cmd.OutOrStdout(), info)
		}

		table, err := pterm.DefaultTable.WithData(pterm.TableData{
			{"Version", info.Version},
			{"Commit", info.Short()},
			{"Built", info.BuildTime},
			{"Go", info.GoVersion},
			{"Platform", info.Platform},
		}).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), table)
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
