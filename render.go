package defcell

import (
	"fmt"
	"reflect"
	"strings"
)

// internalNames are the identifiers the wrapper claims for its own
// machinery in the rendered declaration: the original function reference,
// the argument bag, and the cell-type check. None of them may shadow a
// user-declared parameter name, so each is renamed deterministically (by
// appending underscores) while a collision exists.
type internalNames struct {
	fn   string
	args string
	cell string
}

// maxRenameAttempts bounds the underscore suffixing. Exhausting it takes a
// parameter list that deliberately occupies every reserved-looking name.
const maxRenameAttempts = 6

func pickInternalNames(params []Param) (internalNames, error) {
	taken := make(map[string]bool, len(params)+3)
	for _, p := range params {
		taken[p.Name] = true
	}

	pick := func(preferred string) (string, error) {
		name := preferred
		for i := 0; i < maxRenameAttempts; i++ {
			if !taken[name] {
				taken[name] = true
				return name, nil
			}
			name += "_"
		}
		return "", &NameCollisionError{
			Name:   preferred,
			Reason: fmt.Sprintf("no free internal identifier within %d renames", maxRenameAttempts),
		}
	}

	var names internalNames
	var err error
	if names.fn, err = pick("func"); err != nil {
		return internalNames{}, err
	}
	if names.args, err = pick("args"); err != nil {
		return internalNames{}, err
	}
	if names.cell, err = pick("cell"); err != nil {
		return internalNames{}, err
	}
	return names, nil
}

// renderSynthesis shows the delegation the wrapper performs on every call,
// written with the machinery identifiers claimed by pickInternalNames: the
// delegate, the argument bag, and the cell lookup. "a ?? b" reads as "a if
// the caller supplied it, otherwise b".
func renderSynthesis(names internalNames, params []Param) string {
	var b strings.Builder
	b.WriteString(names.fn)
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case p.Class == VarPositional:
			fmt.Fprintf(&b, "%s.%s...", names.args, p.Name)
		case p.CellBacked():
			fmt.Fprintf(&b, "%s.%s ?? %s(%q)", names.args, p.Name, names.cell, p.cell.Name())
		case p.HasDefault:
			fmt.Fprintf(&b, "%s.%s ?? %#v", names.args, p.Name, p.Default)
		default:
			fmt.Fprintf(&b, "%s.%s", names.args, p.Name)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// renderSignature produces the wrapper's externally observable declaration.
// Cell-backed defaults are displayed as the cell's current value, never as
// the cell reference; the marker conventions follow the parameter classes
// (a trailing "/" closes the positional-only group, "*" opens the
// keyword-only group, "**" marks the keyword collector).
func renderSignature(name string, params []Param, ft reflect.Type) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')

	wrotePosOnlyMarker := false
	wroteKwOnlyMarker := false
	lastPosOnly := -1
	for i, p := range params {
		if p.Class == PositionalOnly {
			lastPosOnly = i
		}
	}

	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}

		if p.Class == KeywordOnly && !wroteKwOnlyMarker {
			// Only needed when no var-positional parameter already
			// closed the positional section.
			if i == 0 || params[i-1].Class != VarPositional {
				b.WriteString("*, ")
			}
			wroteKwOnlyMarker = true
		}

		in := ft.In(i)
		switch p.Class {
		case VarPositional:
			fmt.Fprintf(&b, "*%s ...%s", p.Name, in.Elem())
		case VarKeyword:
			fmt.Fprintf(&b, "**%s %s", p.Name, in)
		default:
			fmt.Fprintf(&b, "%s %s", p.Name, in)
		}

		if p.HasDefault {
			def := p.Default
			if p.cell != nil {
				def = p.cell.Value()
			}
			fmt.Fprintf(&b, " = %#v", def)
		}

		if i == lastPosOnly && !wrotePosOnlyMarker {
			b.WriteString(", /")
			wrotePosOnlyMarker = true
		}
	}

	b.WriteByte(')')
	return b.String()
}
