package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/callgen/display"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/stubgen"
)

// CheckCmd checks if generated stubs are up to date
var CheckCmd = &cobra.Command{
	Use:   "check <descriptor>...",
	Short: "Check if generated stubs are up to date",
	Long: `Check if generated stubs match the current descriptors.

This command generates in memory and compares the result with the files in
the output directory, ignoring generator version lines.

Exit codes:
  0 - Stubs are up to date
  1 - Stubs are out of date or could not be generated

Examples:
  callgen check message.yaml         # Check one interface
  go generate ./... && callgen check # Same, after regenerating`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	CheckCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (default: generate.output)")
	CheckCmd.Flags().BoolP("json", "j", false, "Output the check report as JSON")
}

// checkReport is the JSON form of one interface's check.
type checkReport struct {
	Interface   string   `json:"interface"`
	Source      string   `json:"source"`
	UpToDate    bool     `json:"up_to_date"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Differences []string `json:"differences,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outDir := outputDir(cfg, configPath)
	if generateOutput != "" {
		outDir = generateOutput
	}
	emitters, err := emittersFor(cfg.Generate.Languages)
	if err != nil {
		return err
	}

	manifest, err := stubgen.ReadManifest(outDir)
	if err != nil {
		return err
	}

	asJSON := display.ShouldOutputJSON(cmd)
	var reports []checkReport

	stale := 0
	for _, src := range args {
		g, err := generateOne(cmd.Context(), cfg, src, outDir, emitters)
		if err != nil {
			stale++
			if asJSON {
				reports = append(reports, checkReport{Source: src, Error: err.Error()})
			} else {
				reportFailure(src, g, err)
			}
			continue
		}
		result, err := stubgen.CompareFiles(outDir, g.Files)
		if err != nil {
			return err
		}
		if !result.UpToDate {
			stale++
		}
		if asJSON {
			reports = append(reports, checkReport{
				Interface:   g.Iface.Name,
				Source:      g.Source,
				UpToDate:    result.UpToDate,
				Fingerprint: g.Entry.Fingerprint,
				Missing:     result.Missing,
				Differences: result.Differences,
			})
			continue
		}

		if prev, ok := manifest.Entry(g.Iface.Name); ok && prev.Fingerprint != g.Entry.Fingerprint {
			pterm.Warning.Printf("%s: descriptor changed since last generate (%s -> %s)\n",
				g.Iface.Name, prev.Fingerprint, g.Entry.Fingerprint)
		}
		if result.UpToDate {
			pterm.Success.Printf("%s is up to date\n", g.Iface.Name)
			continue
		}

		pterm.Error.Printf("%s is out of date\n", g.Iface.Name)
		for _, f := range result.Missing {
			pterm.Printf("  missing: %s\n", f)
		}
		for _, f := range result.Differences {
			pterm.Printf("  differs: %s\n", f)
		}
	}

	if asJSON {
		if err := display.OutputJSON(cmd.OutOrStdout(), reports); err != nil {
			return err
		}
	}
	if stale > 0 {
		return errors.WithHint(
			errors.Newf("%d interface(s) out of date", stale),
			"run 'callgen generate' to update")
	}
	return nil
}
