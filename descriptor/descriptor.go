// Package descriptor is the in-memory model of a callable interface: a trait
// with ordered generic parameters, its methods and the concrete receivers
// bound to it.
//
// Descriptors are read-only once loaded. Order is significant everywhere a
// slice appears: generic parameters, arguments, self bounds and bindings
// are emitted in declaration order.
package descriptor

// InterfaceDescriptor describes one trait.
type InterfaceDescriptor struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Doc  string `yaml:"doc,omitempty" toml:"doc,omitempty" json:"doc,omitempty"`

	// Package is the Go package of generated code; defaults to the
	// lowercased interface name.
	Package string `yaml:"package,omitempty" toml:"package,omitempty" json:"package,omitempty"`
	// Requires is a semver constraint on the callgen version.
	Requires string   `yaml:"requires,omitempty" toml:"requires,omitempty" json:"requires,omitempty"`
	Imports  []Import `yaml:"imports,omitempty" toml:"imports,omitempty" json:"imports,omitempty"`

	Generics GenericParameterSet `yaml:"generics,omitempty" toml:"generics,omitempty" json:"generics,omitempty"`
	// SelfBounds are constraints the receiver must satisfy besides the
	// trait itself. "Self" inside a bound refers to the receiver type.
	SelfBounds []string `yaml:"self_bounds,omitempty" toml:"self_bounds,omitempty" json:"self_bounds,omitempty"`

	// DefaultFormat applies to methods that declare no format.
	DefaultFormat string `yaml:"default_format,omitempty" toml:"default_format,omitempty" json:"default_format,omitempty"`

	Methods  []MethodDescriptor  `yaml:"methods" toml:"methods" json:"methods"`
	Bindings []BindingDescriptor `yaml:"bindings,omitempty" toml:"bindings,omitempty" json:"bindings,omitempty"`
}

// Import is a Go import generated code needs for argument or bound types.
type Import struct {
	Alias string `yaml:"alias,omitempty" toml:"alias,omitempty" json:"alias,omitempty"`
	Path  string `yaml:"path" toml:"path" json:"path"`
}

// GenericParameterSet holds lifetimes, type parameters and const
// parameters, each in declaration order.
type GenericParameterSet struct {
	Lifetimes []Param      `yaml:"lifetimes,omitempty" toml:"lifetimes,omitempty" json:"lifetimes,omitempty"`
	Types     []Param      `yaml:"types,omitempty" toml:"types,omitempty" json:"types,omitempty"`
	Consts    []ConstParam `yaml:"consts,omitempty" toml:"consts,omitempty" json:"consts,omitempty"`
}

// Param is a lifetime or type parameter with its bound expressions.
type Param struct {
	Name   string   `yaml:"name" toml:"name" json:"name"`
	Bounds []string `yaml:"bounds,omitempty" toml:"bounds,omitempty" json:"bounds,omitempty"`
}

// ConstParam is a const parameter and its declared type.
type ConstParam struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Type string `yaml:"type" toml:"type" json:"type"`
}

// Len is the total number of parameters.
func (g GenericParameterSet) Len() int {
	return len(g.Lifetimes) + len(g.Types) + len(g.Consts)
}

// IsEmpty reports whether there are no parameters at all.
func (g GenericParameterSet) IsEmpty() bool { return g.Len() == 0 }

// Names returns every parameter name: lifetimes, then types, then consts.
func (g GenericParameterSet) Names() []string {
	names := make([]string, 0, g.Len())
	for _, p := range g.Lifetimes {
		names = append(names, LifetimeName(p.Name))
	}
	for _, p := range g.Types {
		names = append(names, p.Name)
	}
	for _, c := range g.Consts {
		names = append(names, c.Name)
	}
	return names
}

// MethodDescriptor describes one method of a trait.
type MethodDescriptor struct {
	Name     string               `yaml:"name" toml:"name" json:"name"`
	Doc      string               `yaml:"doc,omitempty" toml:"doc,omitempty" json:"doc,omitempty"`
	Generics GenericParameterSet  `yaml:"generics,omitempty" toml:"generics,omitempty" json:"generics,omitempty"`
	Args     []ArgumentDescriptor `yaml:"args,omitempty" toml:"args,omitempty" json:"args,omitempty"`
	// Returns is the Go return type; empty for methods without a result.
	Returns string `yaml:"returns,omitempty" toml:"returns,omitempty" json:"returns,omitempty"`

	InputFormat  string `yaml:"input_format,omitempty" toml:"input_format,omitempty" json:"input_format,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty" toml:"output_format,omitempty" json:"output_format,omitempty"`

	// Receiver is one of mut (default), ref, owned, stateless.
	Receiver string `yaml:"receiver,omitempty" toml:"receiver,omitempty" json:"receiver,omitempty"`
	// Export overrides the exported entry point name.
	Export string `yaml:"export,omitempty" toml:"export,omitempty" json:"export,omitempty"`
}

// HasReturn reports whether the method produces a value.
func (m MethodDescriptor) HasReturn() bool { return m.Returns != "" }

// ExportName is the entry point name: the override or the method name.
func (m MethodDescriptor) ExportName() string {
	if m.Export != "" {
		return m.Export
	}
	return m.Name
}

// ArgumentDescriptor describes one method argument.
type ArgumentDescriptor struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Type string `yaml:"type" toml:"type" json:"type"`
	// ByRef passes a pointer to the decoded value to the implementation.
	ByRef      bool        `yaml:"by_ref,omitempty" toml:"by_ref,omitempty" json:"by_ref,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty" toml:"attributes,omitempty" json:"attributes,omitempty"`
}

// AttributeKind classifies argument attributes.
type AttributeKind string

const (
	// AttrTag is a struct tag key/value copied onto the generated field.
	AttrTag AttributeKind = "tag"
	// AttrDoc is a documentation line copied onto the generated field.
	AttrDoc AttributeKind = "doc"
	// AttrCallgen configures generation and is never forwarded.
	AttrCallgen AttributeKind = "callgen"
)

// Attribute is one argument attribute.
type Attribute struct {
	Kind  AttributeKind `yaml:"kind" toml:"kind" json:"kind"`
	Key   string        `yaml:"key,omitempty" toml:"key,omitempty" json:"key,omitempty"`
	Value string        `yaml:"value" toml:"value" json:"value"`
}

// BindingDescriptor binds a concrete receiver type to the trait and
// instantiates every generic parameter.
type BindingDescriptor struct {
	// Name is the Go identifier used in Register<Name>; defaults to the
	// receiver type name.
	Name     string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Receiver string `yaml:"receiver" toml:"receiver" json:"receiver"`
	// Implements lists the capabilities the receiver declares: the trait
	// name and its self bounds.
	Implements []string `yaml:"implements" toml:"implements" json:"implements"`
	// TypeArgs maps parameter names to Go types. Lifetimes default to
	// dispatch.Static.
	TypeArgs map[string]string `yaml:"type_args,omitempty" toml:"type_args,omitempty" json:"type_args,omitempty"`
	// Methods restricts the binding to a subset; empty binds all.
	Methods      []string `yaml:"methods,omitempty" toml:"methods,omitempty" json:"methods,omitempty"`
	ExportPrefix string   `yaml:"export_prefix,omitempty" toml:"export_prefix,omitempty" json:"export_prefix,omitempty"`
}

// Binds reports whether the binding covers the named method.
func (b BindingDescriptor) Binds(method string) bool {
	if len(b.Methods) == 0 {
		return true
	}
	for _, m := range b.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// ExportName is the entry point name of m under this binding.
func (b BindingDescriptor) ExportName(m MethodDescriptor) string {
	return b.ExportPrefix + m.ExportName()
}

// Method returns the named method.
func (d *InterfaceDescriptor) Method(name string) (*MethodDescriptor, bool) {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i], true
		}
	}
	return nil, false
}
