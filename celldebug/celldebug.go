// Package celldebug provides debugging aids for defcell registries: a
// slog-based change tracer and a tree dump of a registry's cells.
package celldebug

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/defcell/defcell"
)

// Tracer logs every value change of the cells it watches.
//
// Usage:
//
//	tracer := celldebug.NewTracer(slog.NewTextHandler(os.Stderr, nil))
//	tracer.Watch(timeoutCell, retriesCell)
type Tracer struct {
	logger *slog.Logger
}

// NewTracer creates a tracer logging through the given handler. Use
// NewSilentHandler to keep tests quiet.
func NewTracer(h slog.Handler) *Tracer {
	return &Tracer{logger: slog.New(h)}
}

// Watch subscribes the tracer to each cell. The log record carries the cell
// name and the new value; it is emitted synchronously from within Set.
func (t *Tracer) Watch(cells ...*defcell.Cell) {
	for _, c := range cells {
		c := c
		c.Connect(func(newVal any) error {
			t.logger.Info("cell value changed",
				"cell", c.Name(),
				"value", newVal,
			)
			return nil
		})
	}
}

// DumpTree renders the registry's cells as a tree: one child per cell with
// its current value, and a leaf per cell with its subscriber count.
func DumpTree(r *defcell.Registry) string {
	root := tree.NewTree(tree.NodeString("registry"))

	added := 0
	for _, name := range r.Names() {
		c, err := r.Lookup(name)
		if err != nil {
			continue
		}
		root.AddChild(tree.NodeString(fmt.Sprintf("%s = %v", name, c.Value())))
		child, err := root.Child(added)
		added++
		if err != nil {
			continue
		}
		child.AddChild(tree.NodeString(fmt.Sprintf("subscribers: %d", c.Subscribers())))
	}

	return fmt.Sprint(root)
}

// SilentHandler is a slog.Handler that discards everything. Useful when a
// Tracer is wanted for its subscriptions but not its output.
type SilentHandler struct{}

// NewSilentHandler creates a handler that drops all records.
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(context.Context, slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(context.Context, slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(string) slog.Handler {
	return h
}
