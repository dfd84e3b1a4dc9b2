package descriptor

import (
	"strings"

	"github.com/teranos/callgen/errors"
)

// ReceiverParam is the name of the implicit receiver parameter every
// generated type carries first.
const ReceiverParam = "State"

// LifetimeName strips the leading tick some descriptors keep on lifetimes.
func LifetimeName(name string) string {
	return strings.TrimPrefix(name, "'")
}

// MergeGenerics concatenates trait-level then method-level parameters,
// kind by kind. Any name appearing twice across the merged set, or
// shadowing the receiver parameter, is a DuplicateParameterName.
func MergeGenerics(trait, method GenericParameterSet) (GenericParameterSet, error) {
	merged := GenericParameterSet{
		Lifetimes: concat(trait.Lifetimes, method.Lifetimes),
		Types:     concat(trait.Types, method.Types),
		Consts:    concat(trait.Consts, method.Consts),
	}

	seen := map[string]string{ReceiverParam: "receiver"}
	check := func(name, kind string) error {
		if !IsIdentifier(name) {
			return errors.MarkAsf(nil, errors.InvalidDescriptor, "%s parameter %q is not an identifier", kind, name)
		}
		if prev, dup := seen[name]; dup {
			return errors.WithHint(
				errors.MarkAsf(nil, errors.DuplicateParameterName,
					"%s parameter %q collides with %s parameter of the same name", kind, name, prev),
				"trait and method parameters share one namespace; rename the method-level one")
		}
		seen[name] = kind
		return nil
	}
	for _, p := range merged.Lifetimes {
		if err := check(LifetimeName(p.Name), "lifetime"); err != nil {
			return GenericParameterSet{}, err
		}
	}
	for _, p := range merged.Types {
		if err := check(p.Name, "type"); err != nil {
			return GenericParameterSet{}, err
		}
	}
	for _, c := range merged.Consts {
		if err := check(c.Name, "const"); err != nil {
			return GenericParameterSet{}, err
		}
		if c.Type == "" {
			return GenericParameterSet{}, errors.MarkAsf(nil, errors.InvalidDescriptor,
				"const parameter %q has no type", c.Name)
		}
	}
	return merged, nil
}

func concat[T any](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
