package defcell

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCellDefaultResolvesLive(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	f, err := Wrap(
		func(a, b int) int { return a + b },
		NewSignature(Pos("a"), Pos("b", WithDefault(x))),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := Ret1[int](f.Call(10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 11 {
		t.Errorf("expected 11 (b=1), got %d", got)
	}

	if err := x.Set(99); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err = Ret1[int](f.Call(10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 109 {
		t.Errorf("expected 109 (b=99), got %d", got)
	}
}

func TestExplicitOverrideBypassesCell(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	f := MustWrap(
		func(a, b int) int { return a + b },
		NewSignature(Pos("a"), Pos("b", WithDefault(x))),
	)

	got, err := Ret1[int](f.Call(10, 5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 15 {
		t.Errorf("expected 15 (b=5), got %d", got)
	}

	x.Set(99)

	got, _ = Ret1[int](f.Call(10, 5))
	if got != 15 {
		t.Errorf("expected 15 regardless of the cell, got %d", got)
	}
}

func TestKeywordOverride(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	f := MustWrap(
		func(a, b int) int { return a + b },
		NewSignature(Pos("a"), Pos("b", WithDefault(x))),
	)

	got, err := Ret1[int](f.CallNamed([]any{10}, map[string]any{"b": 7}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 17 {
		t.Errorf("expected 17 (b=7), got %d", got)
	}
}

func fiveClass(src string, count int, rest []int, mode string, extra map[string]any) string {
	return fmt.Sprintf("%s|%d|%v|%s|%d", src, count, rest, mode, len(extra))
}

func fiveClassSig(count *Cell) *Signature {
	return NewSignature(
		PosOnly("src"),
		Pos("count", WithDefault(count)),
		VarPos("rest"),
		KwOnly("mode", WithDefault("fast")),
		VarKw("extra"),
	)
}

func TestFiveClassDefaults(t *testing.T) {
	reg := NewRegistry()
	count := reg.Cell("count", 2)

	f := MustWrap(fiveClass, fiveClassSig(count))

	// No optional arguments: identical to calling the original directly
	// with the cell's current value substituted.
	got, err := Ret1[string](f.Call("s"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := fiveClass("s", count.Value().(int), nil, "fast", nil)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	count.Set(42)
	got, _ = Ret1[string](f.Call("s"))
	want = fiveClass("s", 42, nil, "fast", nil)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFiveClassFullBinding(t *testing.T) {
	reg := NewRegistry()
	count := reg.Cell("count", 2)

	f := MustWrap(fiveClass, fiveClassSig(count))

	got, err := Ret1[string](f.CallNamed(
		[]any{"s", 9, 7, 8},
		map[string]any{"mode": "slow", "x": 1, "y": 2},
	))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := fiveClass("s", 9, []int{7, 8}, "slow", map[string]any{"x": 1, "y": 2})
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPosOnlyNameFallsIntoVarKw(t *testing.T) {
	reg := NewRegistry()
	count := reg.Cell("count", 2)

	f := MustWrap(fiveClass, fiveClassSig(count))

	// "src" is positional-only: a keyword named src is an extra keyword,
	// collected by the var-keyword parameter, never a binding for src.
	got, err := Ret1[string](f.CallNamed([]any{"s"}, map[string]any{"src": "zzz"}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := fiveClass("s", 2, nil, "fast", map[string]any{"src": "zzz"})
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPosOnlyNameWithoutVarKwIsUnexpected(t *testing.T) {
	f := MustWrap(
		func(a int) int { return a },
		NewSignature(PosOnly("a")),
	)

	_, err := f.CallNamed(nil, map[string]any{"a": 1})
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	f := MustWrap(
		func(a, b int) int { return a + b },
		NewSignature(Pos("a"), Pos("b")),
	)

	_, err := f.Call(1)
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
	if be.Param != "b" {
		t.Errorf("expected missing parameter b, got %q", be.Param)
	}
}

func TestTooManyPositional(t *testing.T) {
	f := MustWrap(
		func(a int) int { return a },
		NewSignature(Pos("a")),
	)

	_, err := f.Call(1, 2)
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
}

func TestMultipleValuesForParameter(t *testing.T) {
	f := MustWrap(
		func(a int) int { return a },
		NewSignature(Pos("a")),
	)

	_, err := f.CallNamed([]any{1}, map[string]any{"a": 2})
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
}

func TestUnexpectedKeyword(t *testing.T) {
	f := MustWrap(
		func(a int) int { return a },
		NewSignature(Pos("a")),
	)

	_, err := f.CallNamed([]any{1}, map[string]any{"zzz": 2})
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
	if be.Param != "zzz" {
		t.Errorf("expected unexpected keyword zzz, got %q", be.Param)
	}
}

func TestCallTimeTypeMismatch(t *testing.T) {
	f := MustWrap(
		func(a int) int { return a },
		NewSignature(Pos("a")),
	)

	_, err := f.Call("nope")
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
}

func TestCellTypeMismatchAtCallTime(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	f := MustWrap(
		func(a int) int { return a },
		NewSignature(Pos("a", WithDefault(x))),
	)

	if _, err := f.Call(); err != nil {
		t.Fatalf("expected no error while the cell holds an int, got %v", err)
	}

	x.Set("nope")
	_, err := f.Call()
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
}

func TestExplicitCellArgumentHonored(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	f := MustWrap(
		func(a any) any { return a },
		NewSignature(Pos("a", WithDefault(x))),
	)

	// Unsupplied: resolves to the cell's value.
	got, err := Ret1[any](f.Call())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 1 {
		t.Errorf("expected 1, got %v", got)
	}

	// Explicitly passing a cell is an explicit value, never resolved.
	got, err = Ret1[any](f.Call(x))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != any(x) {
		t.Errorf("expected the cell itself, got %v", got)
	}
}

func TestVariadicFunction(t *testing.T) {
	f := MustWrap(
		func(a int, rest ...int) int {
			total := a
			for _, r := range rest {
				total += r
			}
			return total
		},
		NewSignature(Pos("a"), VarPos("rest")),
	)

	got, err := Ret1[int](f.Call(1, 2, 3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 6 {
		t.Errorf("expected 6, got %d", got)
	}

	got, _ = Ret1[int](f.Call(1))
	if got != 1 {
		t.Errorf("expected 1 with empty rest, got %d", got)
	}
}

func TestParamsSnapshotCellDefaults(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	f := MustWrap(
		func(a, b int) int { return a + b },
		NewSignature(Pos("a"), Pos("b", WithDefault(x))),
	)

	params := f.Params()
	if len(params) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(params))
	}
	if params[1].Default != 1 {
		t.Errorf("expected the snapshot value 1, got %v", params[1].Default)
	}
	if !params[1].CellBacked() {
		t.Error("expected the descriptor to stay marked cell-backed")
	}
	if params[0].HasDefault {
		t.Error("expected a to have no default")
	}

	x.Set(99)
	if got := f.Params()[1].Default; got != 99 {
		t.Errorf("expected the snapshot to follow the cell, got %v", got)
	}
}

func TestWrapIdempotentObservableDefaults(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("x", 1)

	sig := func() *Signature {
		return NewSignature(Pos("a"), Pos("b", WithDefault(x)))
	}
	fn := func(a, b int) int { return a + b }

	f1 := MustWrap(fn, sig(), WithName("f"))
	f2 := MustWrap(fn, sig(), WithName("f"))

	opts := []cmp.Option{
		cmp.AllowUnexported(Param{}),
		cmp.Comparer(func(a, b *Cell) bool { return a == b }),
	}
	if diff := cmp.Diff(f1.Params(), f2.Params(), opts...); diff != "" {
		t.Errorf("descriptor mismatch (-f1 +f2):\n%s", diff)
	}
	if f1.Signature() != f2.Signature() {
		t.Errorf("expected identical signatures, got %q and %q", f1.Signature(), f2.Signature())
	}
}

func TestParamNamedFunc(t *testing.T) {
	reg := NewRegistry()
	x := reg.Cell("wrap_test.func_cell", 2)

	f, err := Wrap(
		func(fn, n int) int { return fn * n },
		NewSignature(Pos("func"), Pos("n", WithDefault(x))),
	)
	if err != nil {
		t.Fatalf("expected collision avoidance, not rejection: %v", err)
	}

	got, err := Ret1[int](f.Call(10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 20 {
		t.Errorf("expected 20, got %d", got)
	}

	if f.internal.fn != "func_" {
		t.Errorf("expected the internal delegate renamed to func_, got %q", f.internal.fn)
	}
}

func TestNameCollisionExhaustion(t *testing.T) {
	_, err := Wrap(
		func(a, b, c, d, e, f int) {},
		NewSignature(
			Pos("func"),
			Pos("func_"),
			Pos("func__"),
			Pos("func___"),
			Pos("func____"),
			Pos("func_____"),
		),
	)
	var nc *NameCollisionError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NameCollisionError, got %v", err)
	}
}

func TestRetHelpers(t *testing.T) {
	f := MustWrap(
		func(a int) (int, error) { return a * 2, nil },
		NewSignature(Pos("a")),
	)

	r1, r2, err := Ret2[int, error](f.Call(3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r1 != 6 || r2 != nil {
		t.Errorf("expected (6, nil), got (%v, %v)", r1, r2)
	}

	_, err = Ret1[int](f.Call(3))
	if err == nil {
		t.Error("expected an arity error narrowing 2 results to 1")
	}
}

func TestUnwrapAndName(t *testing.T) {
	fn := func(a int) int { return a }
	f := MustWrap(fn, NewSignature(Pos("a")), WithName("ident"))

	if f.Name() != "ident" {
		t.Errorf("expected ident, got %q", f.Name())
	}
	unwrapped, ok := f.Unwrap().(func(int) int)
	if !ok {
		t.Fatalf("expected the original function type back, got %T", f.Unwrap())
	}
	if unwrapped(7) != 7 {
		t.Error("expected the original function behavior")
	}
}

func TestMustWrapPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	MustWrap(nil, NewSignature())
}
