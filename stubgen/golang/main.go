package golang

import (
	"strings"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/stubgen"
)

func mainFile(iface *descriptor.InterfaceDescriptor, sets []*stubgen.ArtifactSet, opts stubgen.EmitOptions) []byte {
	var w writer
	w.header(opts)
	w.line("package %s", iface.PackageName())
	w.line("")
	w.imports(iface, dispatchImport, formatImport)

	traitInterface(&w, iface, sets)
	for _, s := range sets {
		methodArtifacts(&w, s)
	}
	entryPoints(&w, iface, sets)
	return []byte(w.String())
}

func traitInterface(w *writer, iface *descriptor.InterfaceDescriptor, sets []*stubgen.ArtifactSet) {
	if iface.Doc != "" {
		w.comment(iface.Doc)
	} else {
		w.line("// %s is the callable interface %s.", iface.Name, iface.Name)
	}
	traitParams := ""
	if len(sets) > 0 {
		traitParams = sets[0].Ledger.Trait().TypeParams()
	}
	w.line("type %s%s interface {", iface.Name, traitParams)
	for _, s := range sets {
		if s.Ledger.HasMethodParams() {
			continue
		}
		methodDoc(w, s, "\t")
		w.line("\t%s", s.Signature.String())
	}
	w.line("}")
	w.line("")
}

func methodDoc(w *writer, s *stubgen.ArtifactSet, indent string) {
	if s.Method.Doc == "" {
		return
	}
	for _, l := range strings.Split(strings.TrimRight(s.Method.Doc, "\n"), "\n") {
		w.line("%s// %s", indent, l)
	}
}

func methodArtifacts(w *writer, s *stubgen.ArtifactSet) {
	n := s.Names
	decl := s.Ledger.TypeParams()
	args := s.Ledger.TypeArgs()
	generic := s.Ledger.Generic()

	if s.Ledger.HasMethodParams() {
		w.line("// %s is the part of %s that %s adds to the trait.", n.Capability, s.Interface, s.Method.Name)
		w.line("type %s%s interface {", n.Capability, generic.TypeParams())
		methodDoc(w, s, "\t")
		w.line("\t%s", s.Signature.String())
		w.line("}")
		w.line("")
	}

	// Receiver bound: declared over State and every other parameter.
	bound := stubgen.Ledger{Params: append([]stubgen.LedgerParam{{
		Name:       descriptor.ReceiverParam,
		Kind:       stubgen.KindReceiver,
		Constraint: "any",
	}}, generic.Params...)}
	w.line("// %s bounds the receivers %s can be called on.", n.Receiver, s.Method.Name)
	for _, o := range generic.Outlives() {
		w.line("// Region %s.", o)
	}
	w.line("type %s%s interface {", n.Receiver, bound.TypeParams())
	for _, e := range s.Where.Embeds() {
		w.line("\t%s", e)
	}
	w.line("}")
	w.line("")

	w.line("// %s carries the generic parameters of %s. It has no size.", n.CalledIn, s.Method.Name)
	w.line("type %s%s struct {", n.CalledIn, decl)
	for _, p := range s.Ledger.Markers() {
		w.line("\t_ [0]%s", p.Name)
	}
	w.line("}")
	w.line("")

	w.line("// %s are the decoded arguments of %s.", n.Args, s.Method.Name)
	w.line("type %s%s struct {", n.Args, decl)
	w.line("\t_ %s%s `json:\"-\" msgpack:\"-\"`", n.CalledIn, args)
	if len(s.Fields) > 0 {
		w.line("")
	}
	for _, f := range s.Fields {
		for _, d := range f.Docs {
			w.line("\t// %s", d)
		}
		w.line("\t%s %s `%s`", f.GoName, f.Type, f.Tag)
	}
	w.line("}")
	w.line("")

	w.line("// %s is the result of %s. It encodes as Value alone.", n.Return, s.Method.Name)
	w.line("type %s%s struct {", n.Return, decl)
	w.line("\t_     %s%s", n.CalledIn, args)
	w.line("\tValue %s", s.ReturnType)
	w.line("}")
	w.line("")
	ret := n.Return + args
	// Marshal hooks on the value, unmarshal hooks on the pointer.
	hooks := []struct {
		ptr       bool
		sig, body string
	}{
		{false, "MarshalJSON() ([]byte, error)", "return format.JSON.Marshal(r.Value)"},
		{true, "UnmarshalJSON(data []byte) error", "return format.JSON.Unmarshal(data, &r.Value)"},
		{false, "MarshalMsgpack() ([]byte, error)", "return format.Msgpack.Marshal(r.Value)"},
		{true, "UnmarshalMsgpack(data []byte) error", "return format.Msgpack.Unmarshal(data, &r.Value)"},
	}
	for _, h := range hooks {
		recv := "r " + ret
		if h.ptr {
			recv = "r *" + ret
		}
		w.line("func (%s) %s {", recv, h.sig)
		w.line("\t%s", h.body)
		w.line("}")
		w.line("")
	}

	bindingType := "dispatch.Binding[State, " + n.Args + args + ", " + ret + "]"
	w.line("// Binding ties %s to the implementation on State.", s.Method.Name)
	w.line("func (%s%s) Binding() %s {", n.CalledIn, args, bindingType)
	w.line("\treturn %s{", bindingType)
	w.line("\t\tInterface: %q,", s.Interface)
	w.line("\t\tMethod:    %q,", s.Method.Name)
	w.line("\t\tInput:     %s,", formatExpr(s.Input))
	w.line("\t\tOutput:    %s,", formatExpr(s.Output))
	w.line("\t\tReceiver:  %s,", receiverExpr(s.Receiver))
	w.line("\t\tArgCount:  %d,", len(s.Fields))
	w.line("\t\tCall: func(state State, args %s%s) (%s, bool) {", n.Args, args, ret)
	call := "state." + s.GoMethod + "(" + callArgs(s.Fields) + ")"
	if s.Void {
		w.line("\t\t\t%s", call)
		w.line("\t\t\treturn %s{}, false", ret)
	} else {
		w.line("\t\t\treturn %s{Value: %s}, true", ret, call)
	}
	w.line("\t\t},")
	w.line("\t}")
	w.line("}")
	w.line("")
}

func callArgs(fields []stubgen.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.ByRef {
			parts[i] = "&args." + f.GoName
		} else {
			parts[i] = "args." + f.GoName
		}
	}
	return strings.Join(parts, ", ")
}

func receiverExpr(r dispatch.Receiver) string {
	switch r {
	case dispatch.ReceiverRef:
		return "dispatch.ReceiverRef"
	case dispatch.ReceiverOwned:
		return "dispatch.ReceiverOwned"
	case dispatch.ReceiverStateless:
		return "dispatch.ReceiverStateless"
	}
	return "dispatch.ReceiverMut"
}

func entryPoints(w *writer, iface *descriptor.InterfaceDescriptor, sets []*stubgen.ArtifactSet) {
	byBinding := map[string][]stubgen.EntryPoint{}
	for _, s := range sets {
		for _, e := range s.Entries {
			w.line("// %s is the %s entry point for %s.", e.GoFunc, e.Export, e.Receiver)
			w.line("func %s(cc *dispatch.CallContext) {", e.GoFunc)
			w.line("\tdispatch.Expose(cc, %s%s{}.Binding())", s.Names.CalledIn, e.TypeArgs)
			w.line("}")
			w.line("")
			byBinding[e.Binding] = append(byBinding[e.Binding], e)
		}
	}

	for _, b := range iface.Bindings {
		entries := byBinding[b.GoName()]
		w.line("// Register%s adds the entry points bound to %s to r.", b.GoName(), b.Receiver)
		w.line("func Register%s(r *dispatch.Registry) error {", b.GoName())
		w.line("\treturn r.Register(")
		for _, e := range entries {
			w.line("\t\tdispatch.Entry{Name: %q, Func: %s},", e.Export, e.GoFunc)
		}
		w.line("\t)")
		w.line("}")
		w.line("")
	}
}
