package descriptor

import (
	"go/token"
	"strings"

	"github.com/teranos/callgen/errors"
)

var receiverKinds = map[string]bool{"": true, "mut": true, "ref": true, "owned": true, "stateless": true}

// IsIdentifier reports whether name is a Go identifier and not a keyword.
func IsIdentifier(name string) bool {
	return token.IsIdentifier(name)
}

// Validate checks interface-wide structure. Per-method problems that are
// generation failures (parameter collisions, argument patterns, formats)
// are left to the generator so they stay scoped to their method.
func (d *InterfaceDescriptor) Validate() error {
	if !IsIdentifier(d.Name) {
		return invalid("interface name %q is not an identifier", d.Name)
	}
	if d.Package != "" && (!IsIdentifier(d.Package) || strings.ToLower(d.Package) != d.Package) {
		return invalid("package %q must be a lowercase identifier", d.Package)
	}
	if d.Requires != "" {
		if _, err := ParseRequires(d.Requires); err != nil {
			return err
		}
	}
	for _, imp := range d.Imports {
		if imp.Path == "" {
			return invalid("import with empty path")
		}
		if imp.Alias != "" && imp.Alias != "_" && imp.Alias != "." && !IsIdentifier(imp.Alias) {
			return invalid("import alias %q is not an identifier", imp.Alias)
		}
	}
	if len(d.Methods) == 0 {
		return invalid("interface %s declares no methods", d.Name)
	}

	names := map[string]bool{}
	for _, m := range d.Methods {
		if !IsIdentifier(m.Name) {
			return invalid("method name %q is not an identifier", m.Name)
		}
		if names[m.Name] {
			return invalid("method %q declared twice", m.Name)
		}
		names[m.Name] = true
		if !receiverKinds[m.Receiver] {
			return invalid("method %s: unknown receiver %q (want mut, ref, owned or stateless)", m.Name, m.Receiver)
		}
		if m.Export != "" && !IsIdentifier(m.Export) {
			return invalid("method %s: export name %q is not an identifier", m.Name, m.Export)
		}
	}

	exports := map[string]string{}
	bindingNames := map[string]bool{}
	for i, b := range d.Bindings {
		if strings.TrimSpace(b.Receiver) == "" {
			return invalid("binding %d has no receiver", i)
		}
		name := b.GoName()
		if !IsIdentifier(name) {
			return invalid("binding %d: name %q is not an identifier", i, name)
		}
		if bindingNames[name] {
			return invalid("binding name %q used twice; set name on one of them", name)
		}
		bindingNames[name] = true
		for _, m := range b.Methods {
			if !names[m] {
				return invalid("binding %s references unknown method %q", name, m)
			}
		}
		for _, m := range d.Methods {
			if !b.Binds(m.Name) {
				continue
			}
			export := b.ExportName(m)
			if prev, dup := exports[export]; dup {
				return errors.WithHint(
					invalid("export name %q produced by both %s and %s.%s", export, prev, name, m.Name),
					"set export_prefix on one of the bindings")
			}
			exports[export] = name + "." + m.Name
		}
	}
	return nil
}

// GoName is the binding's identifier: Name, or the receiver type name
// without pointer and type arguments.
func (b BindingDescriptor) GoName() string {
	if b.Name != "" {
		return b.Name
	}
	r := strings.TrimLeft(strings.TrimSpace(b.Receiver), "*")
	if i := strings.IndexByte(r, '['); i >= 0 {
		r = r[:i]
	}
	if i := strings.LastIndexByte(r, '.'); i >= 0 {
		r = r[i+1:]
	}
	return r
}

// PackageName returns the Go package for generated code.
func (d *InterfaceDescriptor) PackageName() string {
	if d.Package != "" {
		return d.Package
	}
	return strings.ToLower(d.Name)
}

func invalid(format string, args ...interface{}) error {
	return errors.MarkAsf(nil, errors.InvalidDescriptor, format, args...)
}
