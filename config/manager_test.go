package config_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/skekre98/cfgstack/config"
)

// mockSource is a test implementation of config.ConfigSource
type mockSource struct {
	name   string
	data   config.Table
	errVal error
	mu     sync.RWMutex

	// changes, when set, is forwarded to the watch channel
	changes chan struct{}
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Load(ctx context.Context) (config.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.errVal != nil {
		return nil, m.errVal
	}
	return m.data.Clone(), nil
}

func (m *mockSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	if m.changes == nil {
		return nil
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.changes:
				ch <- config.Event{Source: m.name}
			}
		}
	}()
	return nil
}

func (m *mockSource) set(data config.Table, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.errVal = err
}

func TestNewManager_Success(t *testing.T) {
	source := &mockSource{
		name: "profiles/safe.toml",
		data: config.Table{"mode": config.String("safe")},
	}

	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if got := manager.Document()["mode"]; got != config.String("safe") {
		t.Errorf("mode = %v, want safe", got)
	}
}

func TestNewManager_LoadError(t *testing.T) {
	source := &mockSource{
		name:   "profiles/safe.toml",
		errVal: errors.New("load error"),
	}

	_, err := config.NewManager(context.Background(), source)
	if err == nil {
		t.Fatal("NewManager() expected error, got nil")
	}

	if !errors.Is(err, source.errVal) {
		t.Errorf("NewManager() error = %v, want to contain %v", err, source.errVal)
	}
}

func TestManager_MultipleSources(t *testing.T) {
	template := &mockSource{
		name: "config.template.toml",
		data: config.Table{
			"mode":   config.String("safe"),
			"limits": config.Table{"max": config.Int(10), "min": config.Int(1)},
		},
	}
	profile := &mockSource{
		name: "profiles/fast.toml",
		data: config.Table{
			"mode":   config.String("fast"),
			"limits": config.Table{"max": config.Int(100)},
		},
	}

	manager, err := config.NewManager(context.Background(), template, profile)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	want := config.Table{
		"mode":   config.String("fast"),
		"limits": config.Table{"max": config.Int(100), "min": config.Int(1)},
	}
	if got := manager.Document(); !config.Equal(want, got) {
		t.Errorf("Document() = %v, want %v", got, want)
	}
}

func TestManager_Document_IsCopy(t *testing.T) {
	source := &mockSource{name: "test", data: config.Table{"a": config.Table{"b": config.Int(1)}}}
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	manager.Document()["a"].(config.Table)["b"] = config.Int(2)

	if got, _ := manager.Document().Lookup("a", "b"); got != config.Int(1) {
		t.Errorf("a.b = %v after mutating a copy, want 1", got)
	}
}

func TestManager_Reload(t *testing.T) {
	source := &mockSource{name: "test", data: config.Table{"name": config.String("initial")}}
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	source.set(config.Table{"name": config.String("updated"), "port": config.Int(9090)}, nil)
	if err := manager.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := manager.Document()["name"]; got != config.String("updated") {
		t.Errorf("name = %v, want updated", got)
	}

	select {
	case evt := <-eventCh:
		if evt.Err != nil {
			t.Errorf("event error = %v", evt.Err)
		}
		if len(evt.ChangedKeys) != 2 || evt.ChangedKeys[0] != "name" || evt.ChangedKeys[1] != "port" {
			t.Errorf("ChangedKeys = %v, want [name port]", evt.ChangedKeys)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Expected to receive event, but got none")
	}
}

// TestManager_Reload_FailureKeepsDocument tests that a failed reload leaves
// the previous document in place and reports the error to subscribers.
func TestManager_Reload_FailureKeepsDocument(t *testing.T) {
	good := config.Table{"mode": config.String("safe")}
	template := &mockSource{name: "template", data: config.Table{"base": config.Bool(true)}}
	local := &mockSource{name: "local", data: good}

	manager, err := config.NewManager(context.Background(), template, local)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	before := manager.Document()

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	parseErr := &config.ParseError{Source: "local", Line: 1, Column: 5, Msg: "bad"}
	template.set(config.Table{"base": config.Bool(false)}, nil)
	local.set(nil, parseErr)

	err = manager.Reload(context.Background())
	if !errors.Is(err, parseErr) {
		t.Fatalf("Reload() error = %v, want %v", err, parseErr)
	}

	if got := manager.Document(); !config.Equal(before, got) {
		t.Errorf("Document() = %v after failed reload, want %v", got, before)
	}

	select {
	case evt := <-eventCh:
		if !errors.Is(evt.Err, parseErr) {
			t.Errorf("event error = %v, want %v", evt.Err, parseErr)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Expected an error event, but got none")
	}
}

func TestManager_Reload_Cancelled(t *testing.T) {
	source := &mockSource{name: "test", data: config.Table{"a": config.Int(1)}}
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := manager.Reload(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Reload() error = %v, want context.Canceled", err)
	}

	select {
	case evt := <-eventCh:
		t.Errorf("Expected no event for a cancelled reload, got %+v", evt)
	default:
	}
}

func TestManager_Subscribe_MultipleSubscribers(t *testing.T) {
	source := &mockSource{name: "test", data: config.Table{"name": config.String("test-app")}}
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	channels := []chan config.Event{
		make(chan config.Event, 1),
		make(chan config.Event, 1),
		make(chan config.Event, 1),
	}
	for _, ch := range channels {
		manager.Subscribe(ch)
	}

	source.set(config.Table{"name": config.String("updated-app")}, nil)
	if err := manager.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	timeout := time.After(100 * time.Millisecond)
	for i, ch := range channels {
		select {
		case <-ch:
		case <-timeout:
			t.Errorf("subscriber %d did not receive event", i)
		}
	}
}

// TestManager_Reload_NoChangeNoNotification tests that subscribers are NOT notified
// when the document is reloaded but no values have changed
func TestManager_Reload_NoChangeNoNotification(t *testing.T) {
	source := &mockSource{name: "test", data: config.Table{"name": config.String("test-app")}}
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	if err := manager.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	select {
	case evt := <-eventCh:
		t.Errorf("Expected no event when document unchanged, but received: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &mockSource{
		name:    "profiles/safe.toml",
		data:    config.Table{"mode": config.String("safe")},
		changes: make(chan struct{}, 1),
	}
	manager, err := config.NewManager(ctx, source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	eventCh := make(chan config.Event, 1)
	manager.Subscribe(eventCh)

	if err := manager.Watch(ctx); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	source.set(config.Table{"mode": config.String("fast")}, nil)
	source.changes <- struct{}{}

	select {
	case evt := <-eventCh:
		if evt.Source != "profiles/safe.toml" {
			t.Errorf("event source = %q", evt.Source)
		}
		if got := evt.NewDocument["mode"]; got != config.String("fast") {
			t.Errorf("new mode = %v, want fast", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a reload event, but got none")
	}
}

// TestManager_Reload_ConcurrentSafety tests that Reload is safe to call
// concurrently from multiple goroutines
func TestManager_Reload_ConcurrentSafety(t *testing.T) {
	source := &mockSource{name: "test", data: config.Table{"counter": config.Int(0)}}
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	const numGoroutines = 10
	errCh := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(counter int) {
			source.set(config.Table{"counter": config.Int(counter)}, nil)
			errCh <- manager.Reload(context.Background())
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		if err := <-errCh; err != nil {
			t.Errorf("Concurrent reload %d failed: %v", i, err)
		}
	}

	counter, ok := manager.Document()["counter"].(config.Int)
	if !ok || counter < 0 || counter >= numGoroutines {
		t.Errorf("counter = %v, want between 0 and %d", counter, numGoroutines-1)
	}
}

// gatedSource blocks its first Load until release is closed.
type gatedSource struct {
	mockSource
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) Load(ctx context.Context) (config.Table, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.mockSource.Load(ctx)
}

func TestManager_Reload_EventBaseline(t *testing.T) {
	source := &gatedSource{
		mockSource: mockSource{name: "test", data: config.Table{"v": config.Int(0)}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	// consume the gate with the initial load
	close(source.release)
	manager, err := config.NewManager(context.Background(), source)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	source.once = sync.Once{}
	source.entered = make(chan struct{})
	source.release = make(chan struct{})

	events := make(chan config.Event, 4)
	manager.Subscribe(events)

	source.set(config.Table{"v": config.Int(1)}, nil)
	slow := make(chan error, 1)
	go func() { slow <- manager.Reload(context.Background()) }()
	<-source.entered

	if err := manager.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	first := <-events
	if !config.Equal(config.Table{"v": config.Int(0)}, first.OldDocument) {
		t.Errorf("first event old = %v, want v = 0", first.OldDocument)
	}

	source.set(config.Table{"v": config.Int(2)}, nil)
	close(source.release)
	if err := <-slow; err != nil {
		t.Fatalf("slow Reload() error = %v", err)
	}

	select {
	case second := <-events:
		if !config.Equal(config.Table{"v": config.Int(1)}, second.OldDocument) {
			t.Errorf("second event old = %v, want v = 1", second.OldDocument)
		}
		if !config.Equal(config.Table{"v": config.Int(2)}, second.NewDocument) {
			t.Errorf("second event new = %v, want v = 2", second.NewDocument)
		}
	case <-time.After(time.Second):
		t.Fatal("no event from the slow reload")
	}
}
