package stubgen

import (
	"strings"

	"github.com/teranos/callgen/descriptor"
)

// ParamKind classifies a ledger entry.
type ParamKind int

const (
	KindReceiver ParamKind = iota
	KindRegion
	KindType
	KindConst
)

func (k ParamKind) String() string {
	switch k {
	case KindReceiver:
		return "receiver"
	case KindRegion:
		return "region"
	case KindType:
		return "type"
	case KindConst:
		return "const"
	}
	return "unknown"
}

// LedgerParam is one generic parameter of a generated type.
type LedgerParam struct {
	Name string
	Kind ParamKind
	// Constraint is the Go constraint expression.
	Constraint string
	// Bounds are the declared bounds; for regions they are documentation
	// only.
	Bounds []string
	// Method is true for parameters declared on the method rather than the
	// trait.
	Method bool
}

// Ledger is the ordered generic parameter list every artifact of one
// method shares: the receiver, then lifetimes, types and consts, trait
// level before method level within each kind.
type Ledger struct {
	Params []LedgerParam
}

// NewLedger builds the ledger for merged generics. receiverConstraint is
// the constraint on State, written in terms of the other parameters.
func NewLedger(trait, method descriptor.GenericParameterSet, receiverConstraint string) Ledger {
	l := Ledger{}
	l.Params = append(l.Params, LedgerParam{
		Name:       descriptor.ReceiverParam,
		Kind:       KindReceiver,
		Constraint: receiverConstraint,
	})
	l.Params = append(l.Params, regions(trait.Lifetimes, false)...)
	l.Params = append(l.Params, regions(method.Lifetimes, true)...)
	l.Params = append(l.Params, types(trait.Types, false)...)
	l.Params = append(l.Params, types(method.Types, true)...)
	l.Params = append(l.Params, consts(trait.Consts, false)...)
	l.Params = append(l.Params, consts(method.Consts, true)...)
	return l
}

func regions(ps []descriptor.Param, method bool) []LedgerParam {
	out := make([]LedgerParam, 0, len(ps))
	for _, p := range ps {
		out = append(out, LedgerParam{
			Name:       descriptor.LifetimeName(p.Name),
			Kind:       KindRegion,
			Constraint: "dispatch.Region",
			Bounds:     p.Bounds,
			Method:     method,
		})
	}
	return out
}

func types(ps []descriptor.Param, method bool) []LedgerParam {
	out := make([]LedgerParam, 0, len(ps))
	for _, p := range ps {
		out = append(out, LedgerParam{
			Name:       p.Name,
			Kind:       KindType,
			Constraint: Constraint(p.Bounds),
			Bounds:     p.Bounds,
			Method:     method,
		})
	}
	return out
}

func consts(cs []descriptor.ConstParam, method bool) []LedgerParam {
	out := make([]LedgerParam, 0, len(cs))
	for _, c := range cs {
		out = append(out, LedgerParam{
			Name:       c.Name,
			Kind:       KindConst,
			Constraint: "dispatch.Const[" + c.Type + "]",
			Method:     method,
		})
	}
	return out
}

// Constraint renders bounds as a single Go constraint.
func Constraint(bounds []string) string {
	switch len(bounds) {
	case 0:
		return "any"
	case 1:
		return bounds[0]
	}
	return "interface{ " + strings.Join(bounds, "; ") + " }"
}

// Names returns the parameter names in order.
func (l Ledger) Names() []string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return names
}

// Markers returns the parameters a carrier records: everything but consts.
func (l Ledger) Markers() []LedgerParam {
	var out []LedgerParam
	for _, p := range l.Params {
		if p.Kind != KindConst {
			out = append(out, p)
		}
	}
	return out
}

// Generic returns the ledger without the receiver.
func (l Ledger) Generic() Ledger {
	var out Ledger
	for _, p := range l.Params {
		if p.Kind != KindReceiver {
			out.Params = append(out.Params, p)
		}
	}
	return out
}

// Trait returns the trait-level parameters.
func (l Ledger) Trait() Ledger {
	var out Ledger
	for _, p := range l.Params {
		if p.Kind != KindReceiver && !p.Method {
			out.Params = append(out.Params, p)
		}
	}
	return out
}

// Filter returns the parameters whose kind is in kinds.
func (l Ledger) Filter(kinds ...ParamKind) Ledger {
	var out Ledger
	for _, p := range l.Params {
		for _, k := range kinds {
			if p.Kind == k {
				out.Params = append(out.Params, p)
				break
			}
		}
	}
	return out
}

// Outlives describes each bounded region, e.g. "call outlives tx".
func (l Ledger) Outlives() []string {
	var out []string
	for _, p := range l.Params {
		if p.Kind != KindRegion || len(p.Bounds) == 0 {
			continue
		}
		bounds := make([]string, len(p.Bounds))
		for i, b := range p.Bounds {
			bounds[i] = descriptor.LifetimeName(b)
		}
		out = append(out, p.Name+" outlives "+strings.Join(bounds, ", "))
	}
	return out
}

// HasMethodParams reports whether the method declares its own generics.
func (l Ledger) HasMethodParams() bool {
	for _, p := range l.Params {
		if p.Method {
			return true
		}
	}
	return false
}

// TypeParams renders the declaration list, e.g. "[State R[State], T any]".
// It is empty for an empty ledger.
func (l Ledger) TypeParams() string {
	if len(l.Params) == 0 {
		return ""
	}
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.Name + " " + p.Constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TypeArgs renders the instantiation list, e.g. "[State, T]".
func (l Ledger) TypeArgs() string {
	if len(l.Params) == 0 {
		return ""
	}
	return "[" + strings.Join(l.Names(), ", ") + "]"
}

// Instantiate renders the list with each name replaced by args[name].
// Missing names are reported in order.
func (l Ledger) Instantiate(args map[string]string) (string, []string) {
	if len(l.Params) == 0 {
		return "", nil
	}
	var missing []string
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		v, ok := args[p.Name]
		if !ok || v == "" {
			missing = append(missing, p.Name)
		}
		parts[i] = v
	}
	return "[" + strings.Join(parts, ", ") + "]", missing
}
