package defcell

import "fmt"

// NotRegisteredError is returned when a cell name has no registered cell.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("no cell registered under %q", e.Name)
}

// RegistrationConflictError is returned when the arguments to a cell
// registration are ambiguous or contradictory.
type RegistrationConflictError struct {
	Keys   []string
	Reason string
}

func (e *RegistrationConflictError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("conflicting cell registration (keys %v): %s", e.Keys, e.Reason)
	}
	return fmt.Sprintf("conflicting cell registration: %s", e.Reason)
}

// UninspectableError is returned when the target of Wrap does not expose a
// structured parameter signature (nil, or not a function at all).
type UninspectableError struct {
	Target any
	Reason string
}

func (e *UninspectableError) Error() string {
	return fmt.Sprintf("cannot inspect %T: %s", e.Target, e.Reason)
}

// SignatureMismatchError is returned at wrap time when a parameter
// declaration cannot be reconciled with the function's actual type.
type SignatureMismatchError struct {
	Fn     string
	Reason string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("signature mismatch for %s: %s", e.Fn, e.Reason)
}

// NameCollisionError is returned when parameter names are duplicated, or
// when the wrapper cannot pick internal identifiers that avoid every
// user-declared parameter name.
type NameCollisionError struct {
	Name   string
	Reason string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision on %q: %s", e.Name, e.Reason)
}

// BindError is returned at call time when the supplied arguments cannot be
// bound to the wrapped function's parameters.
type BindError struct {
	Fn     string
	Param  string
	Reason string
}

func (e *BindError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("binding %s, parameter %q: %s", e.Fn, e.Param, e.Reason)
	}
	return fmt.Sprintf("binding %s: %s", e.Fn, e.Reason)
}

// As performs a checked type assertion with a descriptive error.
func As[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}
