package stubgen

import (
	"strings"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/dispatch"
)

// ArtifactSet is everything generated for one method. Every type in it is
// parameterised by the same Ledger, so Args, Return and the binding always
// agree on their generic parameters.
type ArtifactSet struct {
	Interface string
	Method    descriptor.MethodDescriptor
	// GoMethod is the implementation method name, e.g. "MethodB".
	GoMethod string

	Ledger Ledger
	Names  TypeNames
	Where  Where

	Fields    []Field
	Signature Signature
	// ReturnType is the Go type of Return.Value; dispatch.Unit when Void.
	ReturnType string
	Void       bool

	Receiver dispatch.Receiver
	Input    string
	Output   string

	Entries []EntryPoint
}

// TypeNames are the generated identifiers of one method.
type TypeNames struct {
	Receiver   string
	Capability string
	CalledIn   string
	Args       string
	Return     string
	Call       string
	CallFunc   string
}

func newTypeNames(iface, goMethod string) TypeNames {
	prefix := iface + goMethod
	return TypeNames{
		Receiver:   prefix + "Receiver",
		Capability: prefix + "Capability",
		CalledIn:   prefix + "CalledIn",
		Args:       prefix + "Args",
		Return:     prefix + "Return",
		Call:       prefix + "Call",
		CallFunc:   "Call" + goMethod,
	}
}

// Where is the synthesized receiver bound: the trait capability, the
// method capability when the method has its own generics, and the self
// bounds with Self replaced by State. Params carries the bounds of every
// other parameter.
type Where struct {
	Trait      string
	Capability string
	SelfBounds []string
	Params     Ledger
}

// Embeds lists the interfaces the receiver constraint embeds, in order.
func (w Where) Embeds() []string {
	out := []string{w.Trait}
	if w.Capability != "" {
		out = append(out, w.Capability)
	}
	return append(out, w.SelfBounds...)
}

// Field is one Args field.
type Field struct {
	// Wire is the serialized key.
	Wire   string
	GoName string
	// Param is the Go parameter name in signatures.
	Param string
	Type  string
	ByRef bool
	Tag   string
	Docs  []string
}

// ParamType is the type the implementation receives.
func (f Field) ParamType() string {
	if f.ByRef {
		return "*" + f.Type
	}
	return f.Type
}

// Signature is the implementation method signature.
type Signature struct {
	Name   string
	Params []Field
	Result string
}

func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.Param + " " + p.ParamType()
	}
	out := s.Name + "(" + strings.Join(parts, ", ") + ")"
	if s.Result != "" {
		out += " " + s.Result
	}
	return out
}

// EntryPoint is one concrete exported function: a binding of the method
// to a receiver type with every parameter instantiated.
type EntryPoint struct {
	Binding  string
	Receiver string
	Export   string
	GoFunc   string
	TypeArgs string
}
