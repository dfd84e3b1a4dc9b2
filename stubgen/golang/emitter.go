// Package golang renders artifact sets as Go source.
//
// For an interface Message in package message it writes:
//
//	message/message_gen.go         trait, bounds, carriers, Args, Return, entry points
//	message/message_callout_gen.go outbound call helpers (CallOut)
//	message/message_wasm_gen.go    //go:wasmexport shims, wasip1 only (WasmExports)
//
// Output is run through goimports, which formats it and drops imports the
// interface turned out not to need.
package golang

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/tools/imports"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/stubgen"
)

const (
	dispatchImport = "github.com/teranos/callgen/dispatch"
	formatImport   = "github.com/teranos/callgen/format"
	calloutImport  = "github.com/teranos/callgen/callout"
	guestImport    = "github.com/teranos/callgen/dispatch/guest"
)

// Emitter is the Go stubgen.Emitter.
type Emitter struct{}

// New returns a Go emitter.
func New() *Emitter { return &Emitter{} }

// Language implements stubgen.Emitter.
func (e *Emitter) Language() string { return "go" }

// Emit implements stubgen.Emitter.
func (e *Emitter) Emit(result *stubgen.Result, opts stubgen.EmitOptions) ([]stubgen.File, error) {
	iface := result.Interface
	sets := result.Generated()
	if err := checkGoNames(iface, sets); err != nil {
		return nil, err
	}

	pkg := iface.PackageName()
	base := pkg + "/" + pkg

	var files []stubgen.File
	main, err := render(base+"_gen.go", mainFile(iface, sets, opts))
	if err != nil {
		return nil, err
	}
	files = append(files, main)

	if opts.CallOut {
		f, err := render(base+"_callout_gen.go", calloutFile(iface, sets, opts))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if opts.WasmExports {
		f, err := render(base+"_wasm_gen.go", wasmFile(iface, sets, opts))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func render(path string, src []byte) (stubgen.File, error) {
	out, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return stubgen.File{}, errors.WithDetail(
			errors.Wrapf(err, "format generated %s", path),
			string(src))
	}
	return stubgen.File{Path: path, Content: out}, nil
}

// checkGoNames rejects two generated top-level identifiers that collide.
func checkGoNames(iface *descriptor.InterfaceDescriptor, sets []*stubgen.ArtifactSet) error {
	owners := map[string]string{iface.Name: "interface " + iface.Name}
	claim := func(name, owner string) error {
		if prev, dup := owners[name]; dup {
			return errors.WithHint(
				errors.MarkAsf(nil, errors.InvalidDescriptor,
					"generated identifier %s is produced by both %s and %s", name, prev, owner),
				"set export or export_prefix so the entry points get distinct names")
		}
		owners[name] = owner
		return nil
	}
	for _, s := range sets {
		owner := "method " + s.Method.Name
		for _, n := range []string{s.Names.Receiver, s.Names.CalledIn, s.Names.Args, s.Names.Return, s.Names.Call, s.Names.CallFunc} {
			if err := claim(n, owner); err != nil {
				return err
			}
		}
		if s.Ledger.HasMethodParams() {
			if err := claim(s.Names.Capability, owner); err != nil {
				return err
			}
		}
		for _, e := range s.Entries {
			if err := claim(e.GoFunc, "entry point "+e.Export); err != nil {
				return err
			}
		}
	}
	for _, b := range iface.Bindings {
		if err := claim("Register"+b.GoName(), "binding "+b.GoName()); err != nil {
			return err
		}
	}
	return nil
}

// writer accumulates Go source.
type writer struct {
	strings.Builder
}

func (w *writer) line(format string, args ...interface{}) {
	if len(args) == 0 {
		w.WriteString(format)
	} else {
		fmt.Fprintf(w, format, args...)
	}
	w.WriteByte('\n')
}

func (w *writer) comment(text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if l == "" {
			w.line("//")
			continue
		}
		w.line("// %s", l)
	}
}

func (w *writer) header(opts stubgen.EmitOptions) {
	w.line("// Code generated by callgen. DO NOT EDIT.")
	if opts.Source != "" {
		w.line("// Source: %s", opts.Source)
	}
	if opts.Fingerprint != "" {
		w.line("// Source fingerprint: %s", opts.Fingerprint)
	}
	if opts.Version != "" {
		w.line("// Generator version: %s", opts.Version)
	}
	w.line("")
}

func (w *writer) imports(iface *descriptor.InterfaceDescriptor, paths ...string) {
	w.line("import (")
	for _, p := range paths {
		w.line("\t%s", strconv.Quote(p))
	}
	for _, imp := range iface.Imports {
		if imp.Alias != "" {
			w.line("\t%s %s", imp.Alias, strconv.Quote(imp.Path))
		} else {
			w.line("\t%s", strconv.Quote(imp.Path))
		}
	}
	w.line(")")
	w.line("")
}

// formatExpr is the Go expression yielding the named format.
func formatExpr(name string) string {
	switch name {
	case "json":
		return "format.JSON"
	case "msgpack":
		return "format.Msgpack"
	}
	return fmt.Sprintf("format.MustLookup(%q)", name)
}

// paramsMentioning keeps the parameters of l whose names occur in any of
// the type expressions.
func paramsMentioning(l stubgen.Ledger, exprs []string) stubgen.Ledger {
	var out stubgen.Ledger
	for _, p := range l.Params {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(p.Name) + `\b`)
		if lo.SomeBy(exprs, func(e string) bool { return re.MatchString(e) }) {
			out.Params = append(out.Params, p)
		}
	}
	return out
}
