package defcell

// ParamClass identifies how a parameter may be bound at call time.
type ParamClass int

const (
	// PositionalOnly parameters bind by position and never by name.
	PositionalOnly ParamClass = iota
	// PositionalOrKeyword parameters bind by position or by name.
	PositionalOrKeyword
	// VarPositional collects positional arguments beyond the declared ones.
	VarPositional
	// KeywordOnly parameters bind by name and never by position.
	KeywordOnly
	// VarKeyword collects keyword arguments that match no declared name.
	VarKeyword
)

func (pc ParamClass) String() string {
	switch pc {
	case PositionalOnly:
		return "positional-only"
	case PositionalOrKeyword:
		return "positional-or-keyword"
	case VarPositional:
		return "var-positional"
	case KeywordOnly:
		return "keyword-only"
	case VarKeyword:
		return "var-keyword"
	default:
		return "unknown"
	}
}

// Param describes one parameter of a wrapped function: its name, binding
// class, and declared default. A default may be a plain value or a *Cell;
// cell-backed defaults are resolved to the cell's live value at call time.
type Param struct {
	Name       string
	Class      ParamClass
	HasDefault bool
	Default    any

	cell *Cell
}

// CellBacked reports whether the declared default is a value cell.
func (p Param) CellBacked() bool {
	return p.cell != nil
}

// ParamOption is a modifier for parameter declarations.
type ParamOption func(*Param)

// WithDefault declares a default value for a parameter. Passing a *Cell
// makes the parameter cell-backed: unsupplied calls read the cell's value
// at call time instead of a fixed snapshot.
func WithDefault(v any) ParamOption {
	return func(p *Param) {
		p.HasDefault = true
		p.Default = v
		if c, ok := v.(*Cell); ok {
			p.cell = c
		}
	}
}

func newParam(name string, class ParamClass, opts []ParamOption) Param {
	p := Param{Name: name, Class: class}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// PosOnly declares a positional-only parameter.
func PosOnly(name string, opts ...ParamOption) Param {
	return newParam(name, PositionalOnly, opts)
}

// Pos declares a positional-or-keyword parameter.
func Pos(name string, opts ...ParamOption) Param {
	return newParam(name, PositionalOrKeyword, opts)
}

// VarPos declares the var-positional parameter. The wrapped function must
// take a slice (or variadic) input at this position.
func VarPos(name string) Param {
	return newParam(name, VarPositional, nil)
}

// KwOnly declares a keyword-only parameter.
func KwOnly(name string, opts ...ParamOption) Param {
	return newParam(name, KeywordOnly, opts)
}

// VarKw declares the var-keyword parameter. The wrapped function must take
// a string-keyed map input at this position.
func VarKw(name string) Param {
	return newParam(name, VarKeyword, nil)
}
