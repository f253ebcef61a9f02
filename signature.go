package defcell

import (
	"fmt"
	"reflect"
)

// Signature is an ordered parameter declaration for a function about to be
// wrapped. Go functions carry no parameter names or defaults of their own,
// so the caller declares them; classification reconciles the declaration
// with the function's actual type and rejects anything that cannot be
// structurally re-declared.
type Signature struct {
	params []Param
}

// NewSignature builds a signature from parameter declarations, in
// declaration order.
func NewSignature(params ...Param) *Signature {
	s := &Signature{params: make([]Param, len(params))}
	copy(s.params, params)
	return s
}

// Params returns a copy of the declared parameter descriptors.
func (s *Signature) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// classify validates the declaration against fn's reflect type. All
// failures here are decoration-time: a function that does not classify is
// never wrapped.
func (s *Signature) classify(fn any, fnName string) (reflect.Value, error) {
	if fn == nil {
		return reflect.Value{}, &UninspectableError{Target: fn, Reason: "nil function"}
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return reflect.Value{}, &UninspectableError{Target: fn, Reason: "not a function"}
	}

	if len(s.params) != ft.NumIn() {
		return reflect.Value{}, &SignatureMismatchError{
			Fn:     fnName,
			Reason: fmt.Sprintf("declared %d parameters, function takes %d", len(s.params), ft.NumIn()),
		}
	}

	seen := make(map[string]bool, len(s.params))
	prevClass := PositionalOnly
	sawVarPos := false
	sawVarKw := false
	sawDefault := false

	for i, p := range s.params {
		if p.Name == "" {
			return reflect.Value{}, &SignatureMismatchError{
				Fn:     fnName,
				Reason: fmt.Sprintf("parameter %d has an empty name", i),
			}
		}
		if seen[p.Name] {
			return reflect.Value{}, &NameCollisionError{
				Name:   p.Name,
				Reason: "duplicate parameter name",
			}
		}
		seen[p.Name] = true

		if i > 0 && p.Class < prevClass {
			return reflect.Value{}, &SignatureMismatchError{
				Fn:     fnName,
				Reason: fmt.Sprintf("%s parameter %q may not follow a %s parameter", p.Class, p.Name, prevClass),
			}
		}
		prevClass = p.Class

		in := ft.In(i)

		switch p.Class {
		case PositionalOnly, PositionalOrKeyword:
			if p.HasDefault {
				sawDefault = true
			} else if sawDefault {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: fmt.Sprintf("required parameter %q follows a defaulted parameter", p.Name),
				}
			}

		case VarPositional:
			if sawVarPos {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: "more than one var-positional parameter",
				}
			}
			sawVarPos = true
			if p.HasDefault {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: fmt.Sprintf("var-positional parameter %q may not have a default", p.Name),
				}
			}
			if in.Kind() != reflect.Slice {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: fmt.Sprintf("var-positional parameter %q needs a slice input, function takes %s", p.Name, in),
				}
			}

		case KeywordOnly:
			// Keyword-only parameters may be required after defaulted ones.

		case VarKeyword:
			if sawVarKw {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: "more than one var-keyword parameter",
				}
			}
			sawVarKw = true
			if p.HasDefault {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: fmt.Sprintf("var-keyword parameter %q may not have a default", p.Name),
				}
			}
			if in.Kind() != reflect.Map || in.Key().Kind() != reflect.String {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: fmt.Sprintf("var-keyword parameter %q needs a string-keyed map input, function takes %s", p.Name, in),
				}
			}

		default:
			return reflect.Value{}, &SignatureMismatchError{
				Fn:     fnName,
				Reason: fmt.Sprintf("parameter %q has unknown class %d", p.Name, p.Class),
			}
		}

		// Plain defaults are checked once, here. Cell defaults are
		// dynamically typed and are checked on every resolution instead.
		if p.HasDefault && !p.CellBacked() {
			if err := checkAssignable(p.Default, in); err != nil {
				return reflect.Value{}, &SignatureMismatchError{
					Fn:     fnName,
					Reason: fmt.Sprintf("default for %q: %v", p.Name, err),
				}
			}
		}
	}

	if ft.IsVariadic() {
		last := s.params[len(s.params)-1]
		if last.Class != VarPositional {
			return reflect.Value{}, &SignatureMismatchError{
				Fn:     fnName,
				Reason: fmt.Sprintf("variadic function needs a var-positional final parameter, got %s %q", last.Class, last.Name),
			}
		}
	}

	return fv, nil
}

func checkAssignable(v any, t reflect.Type) error {
	if v == nil {
		if !canBeNil(t) {
			return fmt.Errorf("nil is not assignable to %s", t)
		}
		return nil
	}
	vt := reflect.TypeOf(v)
	if !vt.AssignableTo(t) {
		return fmt.Errorf("%s is not assignable to %s", vt, t)
	}
	return nil
}

func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
