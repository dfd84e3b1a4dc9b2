package commands

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/teranos/callgen/config"
	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
	"github.com/teranos/callgen/stubgen"
	"github.com/teranos/callgen/stubgen/golang"
	"github.com/teranos/callgen/stubgen/markdown"
	"github.com/teranos/callgen/version"
)

// loadConfig reads --config if given, otherwise the nearest callgen.toml.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.FindProjectConfig()
	}
	if path == "" {
		cfg, err := config.Load()
		return cfg, "", err
	}
	cfg, err := config.LoadFromFile(path)
	return cfg, path, err
}

// outputDir resolves generate.output against the config file's directory.
func outputDir(cfg *config.Config, configPath string) string {
	out := cfg.Generate.Output
	if filepath.IsAbs(out) || configPath == "" {
		return out
	}
	return filepath.Join(filepath.Dir(configPath), out)
}

func emittersFor(languages []string) ([]stubgen.Emitter, error) {
	var out []stubgen.Emitter
	for _, lang := range languages {
		switch lang {
		case "go":
			out = append(out, golang.New())
		case "markdown":
			out = append(out, markdown.New())
		default:
			return nil, errors.Newf("unknown language %q", lang)
		}
	}
	return out, nil
}

// generated is the in-memory outcome for one descriptor.
type generated struct {
	Source string
	Iface  *descriptor.InterfaceDescriptor
	Result *stubgen.Result
	Files  []stubgen.File
	Entry  stubgen.ManifestEntry
}

// generateOne loads src and renders it with emitters. Nothing is written.
// A method failure still returns the partial Result for reporting.
func generateOne(ctx context.Context, cfg *config.Config, src, outDir string, emitters []stubgen.Emitter) (*generated, error) {
	path, err := descriptor.Fetch(ctx, src, cfg.Generate.FetchDir)
	if err != nil {
		return nil, err
	}
	d, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}
	if err := d.CheckRequires(version.Get()); err != nil {
		return nil, err
	}
	fingerprint, err := d.Fingerprint()
	if err != nil {
		return nil, err
	}
	if cfg.Generate.Package != "" {
		d.Package = cfg.Generate.Package
	}

	g := &generated{Source: sourceLabel(src, path, outDir), Iface: d}
	g.Result = stubgen.GenerateInterface(ctx, d, stubgen.Options{
		DefaultInputFormat:  cfg.Generate.DefaultInputFormat,
		DefaultOutputFormat: cfg.Generate.DefaultOutputFormat,
		Parallelism:         cfg.Generate.Parallelism,
	})

	files, err := stubgen.Emit(g.Result, stubgen.EmitOptions{
		Source:      g.Source,
		Fingerprint: fingerprint,
		Version:     version.Get().Version,
		WasmExports: cfg.Generate.WasmExports,
		CallOut:     cfg.Generate.CallOut,
	}, emitters...)
	if err != nil {
		return g, err
	}
	g.Files = files

	g.Entry = stubgen.ManifestEntry{
		Name:        d.Name,
		Source:      g.Source,
		Fingerprint: fingerprint,
	}
	for _, s := range g.Result.Generated() {
		g.Entry.Methods = append(g.Entry.Methods, s.Method.Name)
	}
	for _, f := range files {
		g.Entry.Files = append(g.Entry.Files, f.Path)
	}
	return g, nil
}

// sourceLabel is how headers name the descriptor: remote sources as given,
// local ones relative to the output directory.
func sourceLabel(src, path, outDir string) string {
	if descriptor.IsRemote(src) {
		return src
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absOut, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// writeGenerated writes g's files and records them in the manifest.
func writeGenerated(outDir string, gs []*generated) error {
	m, err := stubgen.ReadManifest(outDir)
	if err != nil {
		return err
	}
	for _, g := range gs {
		if err := stubgen.WriteFiles(outDir, g.Files); err != nil {
			return err
		}
		m.Upsert(g.Entry)
	}
	m.GeneratorVersion = version.Get().Version
	return stubgen.WriteManifest(outDir, m)
}

// runPostHook runs generate.post_hook in outDir.
func runPostHook(ctx context.Context, cfg *config.Config, outDir string) error {
	args, err := cfg.PostHookArgs()
	if err != nil || len(args) == 0 {
		return err
	}
	hook := exec.CommandContext(ctx, args[0], args[1:]...)
	hook.Dir = outDir
	hook.Stdout = os.Stdout
	hook.Stderr = os.Stderr
	logger.Infow("Running post hook", "command", cfg.Generate.PostHook)
	if err := hook.Run(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "post hook %q", cfg.Generate.PostHook),
			"the generated files were written; fix the hook or clear generate.post_hook")
	}
	return nil
}
