package defcell

import (
	"errors"
	"testing"
)

func TestCellValueSet(t *testing.T) {
	reg := NewRegistry()

	c := reg.Cell("timeout", 30)
	if got := c.Value(); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}

	if err := c.Set(5); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := c.Value(); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestCellName(t *testing.T) {
	reg := NewRegistry()

	c := reg.Cell("retries", 3)
	if c.Name() != "retries" {
		t.Errorf("expected retries, got %q", c.Name())
	}
}

func TestSubscribersFireInOrder(t *testing.T) {
	reg := NewRegistry()
	c := reg.Cell("x", 0)

	var calls []int
	c.Connect(func(v any) error {
		calls = append(calls, 1)
		if v != 7 {
			t.Errorf("subscriber 1: expected 7, got %v", v)
		}
		return nil
	})
	c.Connect(func(v any) error {
		calls = append(calls, 2)
		return nil
	})
	c.Connect(func(v any) error {
		calls = append(calls, 3)
		return nil
	})

	if err := c.Set(7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(calls) != 3 || calls[0] != 1 || calls[1] != 2 || calls[2] != 3 {
		t.Errorf("expected calls [1 2 3], got %v", calls)
	}
}

func TestDuplicateSubscriberInvokedTwice(t *testing.T) {
	reg := NewRegistry()
	c := reg.Cell("x", 0)

	count := 0
	fn := func(v any) error {
		count++
		return nil
	}
	c.Connect(fn)
	c.Connect(fn)

	if err := c.Set(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 invocations, got %d", count)
	}
}

func TestSubscriberErrorStopsDispatch(t *testing.T) {
	reg := NewRegistry()
	c := reg.Cell("x", 0)

	boom := errors.New("boom")
	secondRan := false

	c.Connect(func(v any) error {
		return boom
	})
	c.Connect(func(v any) error {
		secondRan = true
		return nil
	})

	err := c.Set(1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if secondRan {
		t.Error("expected dispatch to stop at the failing subscriber")
	}

	// The value change itself is not rolled back.
	if got := c.Value(); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestSubscriberCount(t *testing.T) {
	reg := NewRegistry()
	c := reg.Cell("x", 0)

	if c.Subscribers() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", c.Subscribers())
	}
	c.Connect(func(any) error { return nil })
	c.Connect(func(any) error { return nil })
	if c.Subscribers() != 2 {
		t.Errorf("expected 2 subscribers, got %d", c.Subscribers())
	}
}
