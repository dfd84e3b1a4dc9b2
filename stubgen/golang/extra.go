package golang

import (
	"strings"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/stubgen"
)

func calloutFile(iface *descriptor.InterfaceDescriptor, sets []*stubgen.ArtifactSet, opts stubgen.EmitOptions) []byte {
	var w writer
	w.header(opts)
	w.line("package %s", iface.PackageName())
	w.line("")
	w.imports(iface, calloutImport, dispatchImport, formatImport)

	for _, s := range sets {
		exprs := []string{s.ReturnType}
		for _, f := range s.Fields {
			exprs = append(exprs, f.Type)
		}
		// Regions never appear in payload types; only what the payload
		// mentions stays generic, so callers get inference.
		params := paramsMentioning(s.Ledger.Filter(stubgen.KindType, stubgen.KindConst), exprs)
		n := s.Names

		w.line("// %s is the outbound payload of %s.", n.Call, s.Method.Name)
		w.line("type %s%s struct {", n.Call, params.TypeParams())
		for _, f := range s.Fields {
			w.line("\t%s %s `%s`", f.GoName, f.Type, f.Tag)
		}
		w.line("}")
		w.line("")

		sig := []string{"target string"}
		lits := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			sig = append(sig, f.Param+" "+f.Type)
			lits = append(lits, f.GoName+": "+f.Param)
		}
		w.line("// %s prepares a %s call to the contract at target.", n.CallFunc, s.Method.ExportName())
		w.line("func %s%s(%s) (*callout.Pending[%s], error) {", n.CallFunc, params.TypeParams(), strings.Join(sig, ", "), s.ReturnType)
		w.line("\treturn callout.Build[%s](target, %q, %s, %s, %s%s{%s})",
			s.ReturnType, s.Method.ExportName(), formatExpr(s.Input), formatExpr(s.Output), n.Call, params.TypeArgs(), strings.Join(lits, ", "))
		w.line("}")
		w.line("")
	}
	return []byte(w.String())
}

func wasmFile(iface *descriptor.InterfaceDescriptor, sets []*stubgen.ArtifactSet, opts stubgen.EmitOptions) []byte {
	var w writer
	w.line("//go:build wasip1")
	w.line("")
	w.header(opts)
	w.line("package %s", iface.PackageName())
	w.line("")
	w.line("import %q", guestImport)
	w.line("")
	for _, s := range sets {
		for _, e := range s.Entries {
			w.line("//go:wasmexport %s", e.Export)
			w.line("func wasm%s() { guest.Run(%q, %s) }", e.GoFunc, e.Export, e.GoFunc)
			w.line("")
		}
	}
	return []byte(w.String())
}
