// Package markdown renders artifact sets as reference documentation: one
// page per interface listing each method's wire contract.
package markdown

import (
	"fmt"
	"strings"

	"github.com/teranos/callgen/stubgen"
)

// Emitter is the Markdown stubgen.Emitter.
type Emitter struct{}

// New returns a Markdown emitter.
func New() *Emitter { return &Emitter{} }

// Language implements stubgen.Emitter.
func (e *Emitter) Language() string { return "markdown" }

// Emit implements stubgen.Emitter.
func (e *Emitter) Emit(result *stubgen.Result, opts stubgen.EmitOptions) ([]stubgen.File, error) {
	iface := result.Interface
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", iface.Name))
	if opts.Source != "" {
		sb.WriteString(fmt.Sprintf("<!-- Source: %s -->\n", opts.Source))
	}
	if opts.Version != "" {
		sb.WriteString(fmt.Sprintf("<!-- Generator version: %s -->\n", opts.Version))
	}
	sb.WriteString("\n")
	if iface.Doc != "" {
		sb.WriteString(iface.Doc + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("Go package: `%s`\n\n", iface.PackageName()))

	sets := result.Generated()
	if len(sets) > 0 {
		if trait := sets[0].Ledger.Trait(); len(trait.Params) > 0 {
			sb.WriteString("## Generic parameters\n\n")
			writeParams(&sb, trait)
		}
	}
	if len(iface.SelfBounds) > 0 {
		sb.WriteString("Receivers must also implement: ")
		sb.WriteString(code(iface.SelfBounds))
		sb.WriteString("\n\n")
	}

	for _, s := range sets {
		writeMethod(&sb, s)
	}

	if len(iface.Bindings) > 0 {
		sb.WriteString("## Bindings\n\n")
		sb.WriteString("| Receiver | Entry point | Method |\n")
		sb.WriteString("|----------|-------------|--------|\n")
		for _, s := range sets {
			for _, e := range s.Entries {
				sb.WriteString(fmt.Sprintf("| `%s` | `%s` | %s |\n", e.Receiver, e.Export, s.Method.Name))
			}
		}
		sb.WriteString("\n")
	}

	return []stubgen.File{{
		Path:    "docs/" + iface.PackageName() + ".md",
		Content: []byte(sb.String()),
	}}, nil
}

func writeMethod(sb *strings.Builder, s *stubgen.ArtifactSet) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", s.Method.Name))
	if s.Method.Doc != "" {
		sb.WriteString(s.Method.Doc + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("```go\n%s\n```\n\n", s.Signature.String()))
	sb.WriteString(fmt.Sprintf("- Receiver: %s\n", s.Receiver))
	sb.WriteString(fmt.Sprintf("- Input: %s\n", s.Input))
	sb.WriteString(fmt.Sprintf("- Output: %s\n", s.Output))
	if s.Void {
		sb.WriteString("- Returns: nothing; no output is written\n")
	} else {
		sb.WriteString(fmt.Sprintf("- Returns: `%s`\n", s.ReturnType))
	}
	sb.WriteString("\n")

	if method := methodParams(s.Ledger); len(method.Params) > 0 {
		sb.WriteString("Method generic parameters:\n\n")
		writeParams(sb, method)
	}

	if len(s.Fields) == 0 {
		sb.WriteString("Takes no arguments.\n\n")
		return
	}
	sb.WriteString("| Key | Position | Type | Field | Notes |\n")
	sb.WriteString("|-----|----------|------|-------|-------|\n")
	for i, f := range s.Fields {
		notes := strings.Join(f.Docs, " ")
		if f.ByRef {
			notes = strings.TrimSpace("by reference. " + notes)
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %d | `%s` | `%s` | %s |\n", f.Wire, i, f.Type, f.GoName, notes))
	}
	sb.WriteString("\n")
}

func methodParams(l stubgen.Ledger) stubgen.Ledger {
	var out stubgen.Ledger
	for _, p := range l.Params {
		if p.Method {
			out.Params = append(out.Params, p)
		}
	}
	return out
}

func writeParams(sb *strings.Builder, l stubgen.Ledger) {
	sb.WriteString("| Name | Kind | Constraint |\n")
	sb.WriteString("|------|------|------------|\n")
	for _, p := range l.Params {
		sb.WriteString(fmt.Sprintf("| `%s` | %s | `%s` |\n", p.Name, p.Kind, p.Constraint))
	}
	sb.WriteString("\n")
	if outlives := l.Outlives(); len(outlives) > 0 {
		for _, o := range outlives {
			sb.WriteString("- Region " + o + "\n")
		}
		sb.WriteString("\n")
	}
}

func code(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "`" + it + "`"
	}
	return strings.Join(quoted, ", ")
}
