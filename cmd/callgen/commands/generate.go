package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/callgen/config"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
)

var (
	generateOutput string
	generateWatch  bool
	generateLang   []string
)

// GenerateCmd renders dispatch stubs from interface descriptors
var GenerateCmd = &cobra.Command{
	Use:   "generate <descriptor>...",
	Short: "Generate dispatch stubs from interface descriptors",
	Long: `Generate dispatch stubs from one or more interface descriptors.

Each descriptor (YAML, TOML or JSON; local path or go-getter source) yields
per method: receiver bound, zero-size CalledIn carrier, Args struct, Return
wrapper and Binding, plus one entry point per bound receiver. Depending on
callgen.toml it also writes call-out helpers, a wasip1 export file and
markdown docs.

A method that cannot be generated is reported and nothing is written for
its interface; other interfaces are still written.

Examples:
  callgen generate message.yaml               # Generate next to callgen.toml
  callgen generate -o ./gen a.yaml b.toml     # Explicit output directory
  callgen generate --watch message.yaml       # Regenerate on change`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (default: generate.output)")
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when a descriptor or callgen.toml changes")
	GenerateCmd.Flags().StringSliceVarP(&generateLang, "lang", "l", nil, "Emitters to run (default: generate.languages)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cfg)
	outDir := outputDir(cfg, configPath)
	if generateOutput != "" {
		outDir = generateOutput
	}

	ctx := cmd.Context()
	if err := generateAll(ctx, cfg, args, outDir); err != nil && !generateWatch {
		return err
	}
	if !generateWatch {
		return nil
	}

	watched := append([]string(nil), args...)
	if configPath != "" {
		watched = append(watched, configPath)
	}
	fw, err := config.NewFileWatcher(watched, 300*time.Millisecond)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.OnChange(func(paths []string) error {
		names := make([]string, len(paths))
		for i, p := range paths {
			names[i] = filepath.Base(p)
		}
		pterm.Info.Printf("%s changed, regenerating\n", strings.Join(names, ", "))
		reloaded, err := reloadConfig(cfg, paths)
		if err != nil {
			return err
		}
		cfg = reloaded
		return generateAll(ctx, cfg, args, outDir)
	})

	pterm.Info.Printf("Watching %d file(s), Ctrl-C to stop\n", len(watched))
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	return nil
}

// applyGenerateFlags lets command-line flags win over callgen.toml.
func applyGenerateFlags(cfg *config.Config) {
	if len(generateLang) > 0 {
		cfg.Generate.Languages = generateLang
	}
}

// reloadConfig rereads callgen.toml when it is among paths and reapplies
// the command-line overrides; otherwise cfg is returned as is.
func reloadConfig(cfg *config.Config, paths []string) (*config.Config, error) {
	for _, p := range paths {
		if filepath.Base(p) != config.ConfigFileName {
			continue
		}
		reloaded, err := config.LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		applyGenerateFlags(reloaded)
		return reloaded, nil
	}
	return cfg, nil
}

// generateAll generates every source and writes the interfaces that
// generated completely.
func generateAll(ctx context.Context, cfg *config.Config, sources []string, outDir string) error {
	emitters, err := emittersFor(cfg.Generate.Languages)
	if err != nil {
		return err
	}

	var ok []*generated
	var failed []error
	for _, src := range sources {
		g, err := generateOne(ctx, cfg, src, outDir, emitters)
		if err != nil {
			reportFailure(src, g, err)
			failed = append(failed, errors.Wrapf(err, "%s", src))
			continue
		}
		ok = append(ok, g)
	}

	if len(ok) > 0 {
		if err := writeGenerated(outDir, ok); err != nil {
			return err
		}
		for _, g := range ok {
			pterm.Success.Printf("%s: %d method(s), %d file(s)\n", g.Iface.Name, len(g.Entry.Methods), len(g.Files))
			for _, f := range g.Files {
				pterm.Printf("  %s\n", filepath.Join(outDir, f.Path))
			}
		}
		if err := runPostHook(ctx, cfg, outDir); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

func reportFailure(src string, g *generated, err error) {
	if g == nil || g.Result == nil || g.Result.OK() {
		pterm.Error.Printf("%s: %v\n", src, err)
		logHints(err)
		return
	}
	pterm.Error.Printf("%s: %d of %d method(s) failed, nothing written for %s\n",
		src, len(g.Result.Errors), len(g.Iface.Methods), g.Iface.Name)
	for _, m := range g.Iface.Methods {
		if merr, bad := g.Result.Errors[m.Name]; bad {
			pterm.Printf("  %s: %v\n", m.Name, merr)
			logHints(merr)
		}
	}
}

func logHints(err error) {
	for _, hint := range errors.GetAllHints(err) {
		pterm.Printf("    hint: %s\n", hint)
	}
	logger.Debugw("Generation failed",
		logger.FieldError, err,
		logger.FieldErrorKind, errors.Kind(err))
}
