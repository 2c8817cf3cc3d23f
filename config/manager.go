package config

import (
	"context"
	"errors"
	"sync"
)

// Manager owns the merged document of an ordered list of sources, reloads it
// on demand or on source changes, and notifies subscribers of the outcome.
//
// Reloads are all-or-nothing: every source is loaded and merged into a fresh
// accumulator, and the current document is replaced only if all of them
// succeed. All public methods are safe for concurrent use.
type Manager struct {
	sources []ConfigSource
	doc     Table
	mu      sync.RWMutex
	subs    []chan Event
}

// NewManager creates a Manager over sources, lowest priority first, and
// performs the initial load.
//
// Returns an error if the initial load fails.
//
// Example:
//
//	mgr, err := config.NewManager(ctx,
//	    &source.FileSource{Path: "config.template.toml", Optional: true},
//	    &source.FileSource{Path: "profiles/safe.toml"},
//	    &source.FileSource{Path: "config.local.toml", Optional: true},
//	)
func NewManager(ctx context.Context, sources ...ConfigSource) (*Manager, error) {
	m := &Manager{sources: sources}
	if err := m.load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Document returns a copy of the current merged document.
func (m *Manager) Document() Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// Reload folds all sources again and swaps the document if every source
// loaded. Subscribers receive an Event either way; on success only when the
// document actually changed.
//
// If the context is cancelled, Reload returns ctx.Err() and keeps the current
// document.
func (m *Manager) Reload(ctx context.Context) error {
	return m.reload(ctx, "")
}

func (m *Manager) reload(ctx context.Context, trigger string) error {
	old, cur, err := m.swap(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.notify(Event{Source: trigger, Err: err})
		}
		return err
	}

	if !Equal(old, cur) {
		evt := diffEvent(old, cur)
		evt.Source = trigger
		m.notify(evt)
	}
	return nil
}

func (m *Manager) load(ctx context.Context) error {
	_, _, err := m.swap(ctx)
	return err
}

// swap installs a freshly folded document and returns it together with the
// one it replaced, read under the same lock.
func (m *Manager) swap(ctx context.Context) (old, cur Table, err error) {
	merged, err := Fold(ctx, m.sources...)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	old, m.doc = m.doc, merged
	m.mu.Unlock()
	return old, merged, nil
}

// Subscribe registers a channel to receive reload events.
//
// Events are sent non-blocking: if a channel's buffer is full the event is
// dropped, so channels should be buffered. The Manager never closes them.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Watch starts every source's watcher and reloads whenever one of them
// reports a change, until ctx is cancelled. It returns once all watchers are
// running, or the first setup error.
func (m *Manager) Watch(ctx context.Context) error {
	ch := make(chan Event, len(m.sources)+1)
	for _, src := range m.sources {
		if err := src.Watch(ctx, ch); err != nil {
			return err
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-ch:
				// failures reach subscribers through notify
				_ = m.reload(ctx, evt.Source)
			}
		}
	}()
	return nil
}
