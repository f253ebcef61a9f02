// Package docbind re-renders documentation templates from named value
// sources. It is a collaborator of the defcell core: the core supplies the
// current value of each cell as a placeholder mapping entry and arranges for
// re-rendering whenever a subscribed cell changes; the rendering itself
// lives here.
//
// Placeholders use text/template syntax keyed by source name:
//
//	b, _ := docbind.New("retries after {{.timeout}}s", timeoutCell)
//	b.Bind()                  // re-render on every cell change
//	doc := b.Rendered()
package docbind

import (
	"strings"
	"sync"
	"text/template"
)

// Source is a named value that reports changes. *defcell.Cell satisfies it.
type Source interface {
	Name() string
	Value() any
	Connect(fn func(newVal any) error)
}

// Binder holds a parsed template plus the sources feeding its placeholders,
// and keeps the latest rendering.
type Binder struct {
	tmpl    *template.Template
	sources []Source

	mu       sync.RWMutex
	rendered string
}

// New parses text and renders it once against the sources' current values.
// A placeholder with no matching source is a parse-time contract violation
// and surfaces as a render error here, not later.
func New(text string, sources ...Source) (*Binder, error) {
	tmpl, err := template.New("doc").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}

	b := &Binder{tmpl: tmpl, sources: sources}
	if err := b.Render(); err != nil {
		return nil, err
	}
	return b, nil
}

// Bind subscribes to every source so that a value change re-renders the
// template synchronously. A render failure propagates to whoever set the
// value, by design: a broken template is loud, not stale.
func (b *Binder) Bind() {
	for _, s := range b.sources {
		s.Connect(func(any) error {
			return b.Render()
		})
	}
}

// Render re-executes the template against the sources' current values.
func (b *Binder) Render() error {
	data := make(map[string]any, len(b.sources))
	for _, s := range b.sources {
		data[s.Name()] = s.Value()
	}

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return err
	}

	b.mu.Lock()
	b.rendered = sb.String()
	b.mu.Unlock()
	return nil
}

// Rendered returns the latest successful rendering.
func (b *Binder) Rendered() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rendered
}
