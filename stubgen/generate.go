// Package stubgen turns an interface descriptor into per-method artifact
// sets: a receiver bound, a zero-size carrier of the generic parameters,
// an Args type, a Return type and one entry point per bound receiver.
//
// Generation is pure. Emitters (stubgen/golang, stubgen/markdown) render an
// ArtifactSet to files; nothing here touches the filesystem.
package stubgen

import (
	"go/parser"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/stubgen/util"
)

// Options are the generator defaults configured per project.
type Options struct {
	DefaultInputFormat  string
	DefaultOutputFormat string
	// Parallelism caps concurrent method generation; 0 means one worker
	// per method.
	Parallelism int
}

// Capability is the set of capabilities a concrete receiver declares.
type Capability struct {
	Receiver string
	Declares []string
}

// CheckCapability fails with UnsatisfiedCapability unless c declares every
// required capability.
func CheckCapability(c Capability, required []string) error {
	missing := lo.Filter(required, func(r string, _ int) bool {
		return !lo.Contains(c.Declares, r)
	})
	if len(missing) == 0 {
		return nil
	}
	return errors.WithHintf(
		errors.MarkAsf(nil, errors.UnsatisfiedCapability,
			"receiver %s does not implement %s", c.Receiver, strings.Join(missing, ", ")),
		"add %s to the binding's implements list", strings.Join(missing, ", "))
}

var selfRef = regexp.MustCompile(`\bSelf\b`)

// Generate produces the artifact set of method m of iface. Any failure
// leaves no partial output: the returned set is nil.
func Generate(m *descriptor.MethodDescriptor, iface *descriptor.InterfaceDescriptor, opts Options) (*ArtifactSet, error) {
	receiver, ok := dispatch.ParseReceiver(m.Receiver)
	if !ok {
		return nil, errors.MarkAsf(nil, errors.InvalidDescriptor, "unknown receiver %q", m.Receiver)
	}

	if _, err := descriptor.MergeGenerics(iface.Generics, m.Generics); err != nil {
		return nil, err
	}

	fields, err := argFields(m)
	if err != nil {
		return nil, err
	}

	input, err := format.Resolve(m.InputFormat, iface.DefaultFormat, opts.DefaultInputFormat)
	if err != nil {
		return nil, errors.Wrapf(err, "method %s input format", m.Name)
	}
	output, err := format.Resolve(m.OutputFormat, iface.DefaultFormat, opts.DefaultOutputFormat)
	if err != nil {
		return nil, errors.Wrapf(err, "method %s output format", m.Name)
	}

	returnType := "dispatch.Unit"
	if m.HasReturn() {
		if !isTypeExpr(m.Returns) {
			return nil, errors.MarkAsf(nil, errors.InvalidDescriptor, "return type %q is not a Go type", m.Returns)
		}
		returnType = m.Returns
	}

	goMethod := util.ToPascalCase(m.Name)
	names := newTypeNames(iface.Name, goMethod)

	// The receiver constraint is written against the ledger's own names.
	params := NewLedger(iface.Generics, m.Generics, "")
	ledger := NewLedger(iface.Generics, m.Generics, names.Receiver+params.TypeArgs())

	where := Where{
		Trait:  iface.Name + ledger.Trait().TypeArgs(),
		Params: ledger.Generic(),
		SelfBounds: lo.Map(iface.SelfBounds, func(b string, _ int) string {
			return selfRef.ReplaceAllString(b, descriptor.ReceiverParam)
		}),
	}
	if ledger.HasMethodParams() {
		where.Capability = names.Capability + ledger.Generic().TypeArgs()
	}

	set := &ArtifactSet{
		Interface: iface.Name,
		Method:    *m,
		GoMethod:  goMethod,
		Ledger:    ledger,
		Names:     names,
		Where:     where,
		Fields:    fields,
		Signature: Signature{
			Name:   goMethod,
			Params: fields,
			Result: m.Returns,
		},
		ReturnType: returnType,
		Void:       !m.HasReturn(),
		Receiver:   receiver,
		Input:      input.Name(),
		Output:     output.Name(),
	}

	required := append([]string{iface.Name}, iface.SelfBounds...)
	for _, b := range iface.Bindings {
		if !b.Binds(m.Name) {
			continue
		}
		entry, err := entryPoint(set, b, required)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %s", b.GoName())
		}
		set.Entries = append(set.Entries, entry)
	}
	return set, nil
}

func entryPoint(set *ArtifactSet, b descriptor.BindingDescriptor, required []string) (EntryPoint, error) {
	if err := CheckCapability(Capability{Receiver: b.Receiver, Declares: b.Implements}, required); err != nil {
		return EntryPoint{}, err
	}

	args := map[string]string{descriptor.ReceiverParam: b.Receiver}
	for _, p := range set.Ledger.Generic().Params {
		if v, ok := b.TypeArgs[set.Method.Name+"."+p.Name]; ok {
			args[p.Name] = v
			continue
		}
		if v, ok := b.TypeArgs[p.Name]; ok {
			args[p.Name] = v
			continue
		}
		if p.Kind == KindRegion {
			args[p.Name] = "dispatch.Static"
		}
	}
	typeArgs, missing := set.Ledger.Instantiate(args)
	if len(missing) > 0 {
		return EntryPoint{}, errors.WithHint(
			errors.MarkAsf(nil, errors.InvalidDescriptor,
				"no type argument for %s", strings.Join(missing, ", ")),
			"add them to the binding's type_args")
	}

	export := b.ExportName(set.Method)
	return EntryPoint{
		Binding:  b.GoName(),
		Receiver: b.Receiver,
		Export:   export,
		GoFunc:   util.ToPascalCase(export),
		TypeArgs: typeArgs,
	}, nil
}

func argFields(m *descriptor.MethodDescriptor) ([]Field, error) {
	fields := make([]Field, 0, len(m.Args))
	goNames := map[string]string{}
	wires := map[string]bool{}

	for i, arg := range m.Args {
		if err := checkPattern(i, arg); err != nil {
			return nil, err
		}

		goName := util.ToPascalCase(arg.Name)
		if override, ok := descriptor.GenerationAttribute(arg, "field"); ok {
			goName = override
		}
		if !descriptor.IsIdentifier(goName) || !util.IsExported(goName) {
			return nil, errors.MarkAsf(nil, errors.UnsupportedArgumentPattern,
				"argument %s: field name %q is not an exported identifier", arg.Name, goName)
		}
		if prev, dup := goNames[goName]; dup {
			return nil, errors.WithHint(
				errors.MarkAsf(nil, errors.UnsupportedArgumentPattern,
					"arguments %s and %s both map to field %s", prev, arg.Name, goName),
				`rename one, or set a "field" callgen attribute`)
		}
		goNames[goName] = arg.Name

		wire := arg.Name
		if rename, ok := descriptor.GenerationAttribute(arg, "rename"); ok {
			wire = rename
		}
		if wires[wire] {
			return nil, errors.MarkAsf(nil, errors.UnsupportedArgumentPattern,
				"serialized key %q used by two arguments", wire)
		}
		wires[wire] = true

		tag, docs, err := fieldTag(arg, wire)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{
			Wire:   wire,
			GoName: goName,
			Param:  util.ToParamName(arg.Name),
			Type:   arg.Type,
			ByRef:  arg.ByRef,
			Tag:    tag,
			Docs:   docs,
		})
	}
	return fields, nil
}

// checkPattern accepts only plain named arguments.
func checkPattern(i int, arg descriptor.ArgumentDescriptor) error {
	name := strings.TrimSpace(arg.Name)
	switch {
	case name == "":
		return errors.MarkAsf(nil, errors.UnsupportedArgumentPattern, "argument %d has no name", i)
	case name == "_":
		return errors.WithHint(
			errors.MarkAsf(nil, errors.UnsupportedArgumentPattern, "argument %d is a wildcard", i),
			"every argument needs a name to become a field")
	case strings.ContainsAny(name, "(){}[],:"):
		return errors.WithHint(
			errors.MarkAsf(nil, errors.UnsupportedArgumentPattern, "argument %d is a destructuring pattern %q", i, name),
			"take the whole value as one named argument")
	case !descriptor.IsIdentifier(name):
		return errors.MarkAsf(nil, errors.UnsupportedArgumentPattern, "argument name %q is not an identifier", name)
	case strings.TrimSpace(arg.Type) == "":
		return errors.MarkAsf(nil, errors.UnsupportedArgumentPattern, "argument %s has no type", name)
	case !isTypeExpr(arg.Type):
		return errors.MarkAsf(nil, errors.UnsupportedArgumentPattern, "argument %s: %q is not a Go type", name, arg.Type)
	}
	return nil
}

// fieldTag renders the struct tag: json and msgpack keys first, then
// forwarded tags in declaration order. A forwarded json or msgpack tag
// replaces the default. Doc attributes become comment lines.
func fieldTag(arg descriptor.ArgumentDescriptor, wire string) (string, []string, error) {
	values := map[string]string{"json": wire, "msgpack": wire}
	keys := []string{"json", "msgpack"}
	var docs []string

	for _, a := range descriptor.ForwardedAttributes(arg) {
		switch a.Kind {
		case descriptor.AttrDoc:
			docs = append(docs, strings.Split(strings.TrimRight(a.Value, "\n"), "\n")...)
		case descriptor.AttrTag:
			if !isTagKey(a.Key) {
				return "", nil, errors.MarkAsf(nil, errors.InvalidDescriptor,
					"argument %s: invalid tag key %q", arg.Name, a.Key)
			}
			if _, seen := values[a.Key]; !seen {
				keys = append(keys, a.Key)
			}
			values[a.Key] = a.Value
		}
	}

	parts := lo.Map(keys, func(k string, _ int) string {
		return k + ":" + strconv.Quote(values[k])
	})
	return strings.Join(parts, " "), docs, nil
}

func isTagKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		if r <= ' ' || r == ':' || r == '"' || r == 0x7f {
			return false
		}
	}
	return true
}

func isTypeExpr(s string) bool {
	_, err := parser.ParseExpr(s)
	return err == nil
}
