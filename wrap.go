package defcell

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/defcell/defcell/docbind"
)

// WrapOption is a modifier for Wrap.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	name      string
	doc       string
	hasDoc    bool
	formatDoc bool
}

// WithName overrides the function name used in rendered signatures and
// error messages. Without it the runtime name of the wrapped function is
// used.
func WithName(name string) WrapOption {
	return func(c *wrapConfig) {
		c.name = name
	}
}

// WithDoc attaches a documentation template to the wrapper. Placeholders
// reference cells by name ({{.timeout}} reads the cell named "timeout").
// Unless disabled with WithDocFormat(false), the rendered documentation is
// kept current: every cell referenced by the signature re-renders the
// template when its value changes.
func WithDoc(template string) WrapOption {
	return func(c *wrapConfig) {
		c.doc = template
		c.hasDoc = true
	}
}

// WithDocFormat controls whether documentation re-rendering is wired to
// cell changes. It defaults to true when WithDoc is given.
func WithDocFormat(enabled bool) WrapOption {
	return func(c *wrapConfig) {
		c.formatDoc = enabled
	}
}

// defaultKind is the per-parameter binding state: no default, a plain
// default forwarded verbatim, or a cell-backed default resolved live. The
// three states are explicit; nothing is smuggled through sentinel values,
// so a caller-supplied *Cell is always honored as an explicit argument.
type defaultKind uint8

const (
	defaultNone defaultKind = iota
	defaultPlain
	defaultCell
)

type binding struct {
	param Param
	kind  defaultKind
	in    reflect.Type
	def   reflect.Value // precomputed, defaultPlain only
}

// Func is a synthesized wrapper around a function. It preserves the
// original calling convention class-for-class and resolves cell-backed
// defaults to the cell's current value on every call where the caller did
// not supply the parameter. Func is immutable after Wrap.
type Func struct {
	fn       reflect.Value
	fnType   reflect.Type
	name     string
	params   []Param
	plan     []binding
	posIdx   []int
	byName   map[string]int
	varPos   int
	varKw    int
	internal internalNames
	doc      *docbind.Binder
}

// Wrap synthesizes a wrapper for fn according to sig. All classification
// and collision failures surface here, never at call time; a function that
// fails to wrap is never callable through a partial wrapper.
func Wrap(fn any, sig *Signature, opts ...WrapOption) (*Func, error) {
	cfg := wrapConfig{formatDoc: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := cfg.name
	if name == "" {
		name = funcName(fn)
	}

	fv, err := sig.classify(fn, name)
	if err != nil {
		return nil, err
	}

	params := sig.Params()
	internal, err := pickInternalNames(params)
	if err != nil {
		return nil, err
	}

	f := &Func{
		fn:       fv,
		fnType:   fv.Type(),
		name:     name,
		params:   params,
		plan:     make([]binding, len(params)),
		byName:   make(map[string]int, len(params)),
		varPos:   -1,
		varKw:    -1,
		internal: internal,
	}

	for i, p := range params {
		b := binding{param: p, in: f.fnType.In(i)}

		switch {
		case p.CellBacked():
			b.kind = defaultCell
		case p.HasDefault:
			b.kind = defaultPlain
			if p.Default == nil {
				b.def = reflect.Zero(b.in)
			} else {
				b.def = reflect.ValueOf(p.Default)
			}
		}

		switch p.Class {
		case PositionalOnly:
			f.posIdx = append(f.posIdx, i)
		case PositionalOrKeyword:
			f.posIdx = append(f.posIdx, i)
			f.byName[p.Name] = i
		case VarPositional:
			f.varPos = i
		case KeywordOnly:
			f.byName[p.Name] = i
		case VarKeyword:
			f.varKw = i
		}

		f.plan[i] = b
	}

	if cfg.hasDoc {
		sources := make([]docbind.Source, 0, len(params))
		seen := make(map[*Cell]bool, len(params))
		for _, p := range params {
			if p.cell != nil && !seen[p.cell] {
				seen[p.cell] = true
				sources = append(sources, p.cell)
			}
		}

		binder, err := docbind.New(cfg.doc, sources...)
		if err != nil {
			return nil, fmt.Errorf("wrapping %s: %w", name, err)
		}
		if cfg.formatDoc {
			binder.Bind()
		}
		f.doc = binder
	}

	return f, nil
}

// MustWrap is Wrap, panicking on error. Intended for package-level wrapper
// construction where a failure is a programming mistake.
func MustWrap(fn any, sig *Signature, opts ...WrapOption) *Func {
	f, err := Wrap(fn, sig, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Call invokes the wrapper with positional arguments only.
func (f *Func) Call(args ...any) ([]any, error) {
	return f.CallNamed(args, nil)
}

// CallNamed invokes the wrapper with positional and keyword arguments.
//
// Positional arguments fill positional-only and positional-or-keyword
// parameters in declaration order; any overflow goes to the var-positional
// parameter. Keyword arguments bind positional-or-keyword and keyword-only
// parameters by name; unmatched keywords go to the var-keyword parameter.
// A keyword matching a positional-only parameter's name is an unmatched
// keyword, not a binding for that parameter.
//
// Every parameter the caller did not supply resolves its default: plain
// defaults are forwarded verbatim, cell-backed defaults read the cell's
// current value at this moment. Explicitly supplied values always win,
// including values that are themselves a *Cell.
func (f *Func) CallNamed(args []any, kwargs map[string]any) ([]any, error) {
	in := make([]reflect.Value, len(f.plan))
	supplied := make([]bool, len(f.plan))

	// Positional section.
	pi := 0
	for _, idx := range f.posIdx {
		if pi >= len(args) {
			break
		}
		v, err := f.conv(args[pi], f.plan[idx].param.Name, f.plan[idx].in)
		if err != nil {
			return nil, err
		}
		in[idx] = v
		supplied[idx] = true
		pi++
	}

	if rest := args[pi:]; len(rest) > 0 {
		if f.varPos < 0 {
			return nil, &BindError{
				Fn:     f.name,
				Reason: fmt.Sprintf("takes at most %d positional arguments, got %d", len(f.posIdx), len(args)),
			}
		}
		b := f.plan[f.varPos]
		slice := reflect.MakeSlice(b.in, 0, len(rest))
		for _, a := range rest {
			v, err := f.conv(a, b.param.Name, b.in.Elem())
			if err != nil {
				return nil, err
			}
			slice = reflect.Append(slice, v)
		}
		in[f.varPos] = slice
		supplied[f.varPos] = true
	}

	// Keyword section.
	var extra reflect.Value
	if f.varKw >= 0 {
		extra = reflect.MakeMap(f.plan[f.varKw].in)
	}

	for k, a := range kwargs {
		idx, ok := f.byName[k]
		if !ok {
			if f.varKw < 0 {
				return nil, &BindError{
					Fn:     f.name,
					Param:  k,
					Reason: "unexpected keyword argument",
				}
			}
			v, err := f.conv(a, f.plan[f.varKw].param.Name, f.plan[f.varKw].in.Elem())
			if err != nil {
				return nil, err
			}
			extra.SetMapIndex(reflect.ValueOf(k), v)
			continue
		}
		if supplied[idx] {
			return nil, &BindError{
				Fn:     f.name,
				Param:  k,
				Reason: "multiple values supplied",
			}
		}
		v, err := f.conv(a, k, f.plan[idx].in)
		if err != nil {
			return nil, err
		}
		in[idx] = v
		supplied[idx] = true
	}

	// Default resolution for everything the caller left out.
	for i := range f.plan {
		if supplied[i] {
			continue
		}
		b := &f.plan[i]
		switch b.kind {
		case defaultPlain:
			in[i] = b.def
		case defaultCell:
			v, err := f.conv(b.param.cell.Value(), b.param.Name, b.in)
			if err != nil {
				return nil, err
			}
			in[i] = v
		default:
			switch b.param.Class {
			case VarPositional:
				in[i] = reflect.MakeSlice(b.in, 0, 0)
			case VarKeyword:
				in[i] = extra
			default:
				return nil, &BindError{
					Fn:     f.name,
					Param:  b.param.Name,
					Reason: "missing required argument",
				}
			}
		}
	}

	var out []reflect.Value
	if f.fnType.IsVariadic() {
		out = f.fn.CallSlice(in)
	} else {
		out = f.fn.Call(in)
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

func (f *Func) conv(v any, param string, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if !canBeNil(t) {
			return reflect.Value{}, &BindError{
				Fn:     f.name,
				Param:  param,
				Reason: fmt.Sprintf("nil is not assignable to %s", t),
			}
		}
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, &BindError{
			Fn:     f.name,
			Param:  param,
			Reason: fmt.Sprintf("%s is not assignable to %s", rv.Type(), t),
		}
	}
	return rv, nil
}

// Params returns the wrapper's externally observable parameter
// descriptors. Cell-backed defaults are reported as the cell's current
// value, not the cell reference; CellBacked still reports true on them.
func (f *Func) Params() []Param {
	out := make([]Param, len(f.params))
	for i, p := range f.params {
		if p.cell != nil {
			p.Default = p.cell.Value()
		}
		out[i] = p
	}
	return out
}

// Signature renders the wrapper's declaration with live default values.
func (f *Func) Signature() string {
	return renderSignature(f.name, f.Params(), f.fnType)
}

func (f *Func) String() string {
	return f.Signature()
}

// Synthesis renders the delegation the wrapper performs on every call, for
// debugging. The identifiers for the delegate, the argument bag and the
// cell lookup are the collision-avoided internal names, so they never
// shadow a parameter.
func (f *Func) Synthesis() string {
	return renderSynthesis(f.internal, f.params)
}

// Name returns the wrapper's display name.
func (f *Func) Name() string {
	return f.name
}

// Unwrap returns the original function.
func (f *Func) Unwrap() any {
	return f.fn.Interface()
}

// Doc returns the current rendered documentation, or "" when no template
// was attached.
func (f *Func) Doc() string {
	if f.doc == nil {
		return ""
	}
	return f.doc.Rendered()
}

// RefreshDoc re-renders the documentation template against current cell
// values. Only useful with WithDocFormat(false), where rendering is not
// wired to cell changes.
func (f *Func) RefreshDoc() error {
	if f.doc == nil {
		return nil
	}
	return f.doc.Render()
}

// Ret1 narrows a Call result to a single typed return value.
func Ret1[R any](results []any, err error) (R, error) {
	var zero R
	if err != nil {
		return zero, err
	}
	if len(results) != 1 {
		return zero, fmt.Errorf("expected 1 result, got %d", len(results))
	}
	return As[R](results[0])
}

// Ret2 narrows a Call result to two typed return values.
func Ret2[R1, R2 any](results []any, err error) (R1, R2, error) {
	var zero1 R1
	var zero2 R2
	if err != nil {
		return zero1, zero2, err
	}
	if len(results) != 2 {
		return zero1, zero2, fmt.Errorf("expected 2 results, got %d", len(results))
	}
	r1, err := As[R1](results[0])
	if err != nil {
		return zero1, zero2, err
	}
	r2, err := As[R2](results[1])
	if err != nil {
		return zero1, zero2, err
	}
	return r1, r2, nil
}

func funcName(fn any) string {
	if fn == nil {
		return "<nil>"
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	rf := runtime.FuncForPC(fv.Pointer())
	if rf == nil {
		return "<func>"
	}
	name := rf.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
