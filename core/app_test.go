package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeModule struct {
	name     string
	deps     []string
	rec      *recorder
	startErr error
}

func (m *fakeModule) Name() string        { return m.name }
func (m *fakeModule) DependsOn() []string { return m.deps }

func (m *fakeModule) Configure(*Container) error {
	m.rec.add("configure " + m.name)
	return nil
}

func (m *fakeModule) Start(context.Context, *Container) error {
	m.rec.add("start " + m.name)
	return m.startErr
}

func (m *fakeModule) Stop(context.Context, *Container) error {
	m.rec.add("stop " + m.name)
	return nil
}

func names(mods []Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.Name()
	}
	return out
}

func TestTopoSort(t *testing.T) {
	rec := &recorder{}
	tests := []struct {
		name    string
		mods    []Module
		want    []string
		wantErr string
	}{
		{
			name: "dependencies first",
			mods: []Module{
				&fakeModule{name: "actuator", deps: []string{"web"}, rec: rec},
				&fakeModule{name: "web", rec: rec},
			},
			want: []string{"web", "actuator"},
		},
		{
			name: "independent modules sorted by name",
			mods: []Module{
				&fakeModule{name: "b", rec: rec},
				&fakeModule{name: "a", rec: rec},
			},
			want: []string{"a", "b"},
		},
		{
			name: "cycle",
			mods: []Module{
				&fakeModule{name: "a", deps: []string{"b"}, rec: rec},
				&fakeModule{name: "b", deps: []string{"a"}, rec: rec},
			},
			wantErr: "cycle detected",
		},
		{
			name:    "missing dependency",
			mods:    []Module{&fakeModule{name: "actuator", deps: []string{"web"}, rec: rec}},
			wantErr: "missing dependency: actuator depends on web",
		},
		{
			name: "duplicate name",
			mods: []Module{
				&fakeModule{name: "web", rec: rec},
				&fakeModule{name: "web", rec: rec},
			},
			wantErr: "duplicate module name: web",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := topoSort(tt.mods)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApp_Run(t *testing.T) {
	rec := &recorder{}
	app := NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)),
		&fakeModule{name: "actuator", deps: []string{"web"}, rec: rec},
		&fakeModule{name: "web", rec: rec},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.list()) == 4 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, []string{
		"configure web", "configure actuator",
		"start web", "start actuator",
		"stop actuator", "stop web",
	}, rec.list())
}

func TestApp_Run_StartFailureStopsStarted(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	app := NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)),
		&fakeModule{name: "a", rec: rec},
		&fakeModule{name: "b", deps: []string{"a"}, rec: rec, startErr: boom},
	)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"configure a", "configure b", "start a", "start b", "stop a"}, rec.list())
}

func TestContainer(t *testing.T) {
	c := NewContainer()

	_, ok := Lookup[string](c)
	assert.False(t, ok)
	assert.Panics(t, func() { Must[int](c) })

	Provide(c, "value")
	Provide(c, 42)
	assert.Equal(t, "value", Must[string](c))
	assert.Equal(t, 42, Must[int](c))

	Provide(c, "replaced")
	got, ok := Lookup[string](c)
	assert.True(t, ok)
	assert.Equal(t, "replaced", got)
}
