package defcell

import "sync"

// Subscriber is a callback invoked synchronously whenever a cell's value
// changes. The new value is the sole argument.
type Subscriber = func(newVal any) error

// Cell is a named, mutable value holder usable as a function parameter's
// default. Cells are identity-keyed singletons: the registry hands out at
// most one cell per name for the process lifetime, and everything else
// (function defaults, user variables) holds shared references to it.
type Cell struct {
	name string

	mu    sync.RWMutex
	value any
	subs  []Subscriber
}

// Name returns the cell's immutable identity key.
func (c *Cell) Name() string {
	return c.name
}

// Value returns the current stored value.
func (c *Cell) Value() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores a new value, then invokes every subscriber in subscription
// order with the new value. Dispatch is synchronous: Set does not return
// until every subscriber has run. A subscriber error is returned to the
// caller immediately and the remaining subscribers are not invoked, so a
// broken listener is visible rather than silently stale.
func (c *Cell) Set(newVal any) error {
	c.mu.Lock()
	c.value = newVal
	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		if err := fn(newVal); err != nil {
			return err
		}
	}

	return nil
}

// Connect appends fn to the subscriber list. Registering the same callback
// twice causes it to be invoked twice; there is no deduplication.
func (c *Cell) Connect(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Subscribers reports how many callbacks are currently connected.
func (c *Cell) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}
