package core

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"
)

// App runs a set of modules: configure all, start all in dependency order,
// wait for the context to end, stop all in reverse order.
type App struct {
	Modules   []Module
	Container *Container
	Logger    *slog.Logger

	// ShutdownTimeout bounds the whole stop phase.
	ShutdownTimeout time.Duration
}

func NewApp(logger *slog.Logger, mods ...Module) *App {
	return &App{
		Modules:         mods,
		Container:       NewContainer(),
		Logger:          logger,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Configure orders the modules by dependency and configures each of them.
// It returns the start order.
func (a *App) Configure() ([]Module, error) {
	order, err := topoSort(a.Modules)
	if err != nil {
		return nil, err
	}
	for _, m := range order {
		if err := m.Configure(a.Container); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Run configures and starts the modules, then blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	order, err := a.Configure()
	if err != nil {
		return err
	}

	for i, m := range order {
		a.Logger.Info("starting module", "module", m.Name())
		if err := m.Start(ctx, a.Container); err != nil {
			a.stop(order[:i])
			return err
		}
	}

	<-ctx.Done()
	return a.stop(order)
}

func (a *App) stop(started []Module) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		m := started[i]
		a.Logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(shutdownCtx, a.Container); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func topoSort(mods []Module) ([]Module, error) {
	byName := map[string]Module{}
	for _, m := range mods {
		if _, dup := byName[m.Name()]; dup {
			return nil, errors.New("duplicate module name: " + m.Name())
		}
		byName[m.Name()] = m
	}

	visited := map[string]bool{}
	inProgress := map[string]bool{}
	var out []Module
	var visit func(string) error
	visit = func(n string) error {
		if inProgress[n] {
			return errors.New("cycle detected at module " + n)
		}
		if visited[n] {
			return nil
		}
		inProgress[n] = true
		for _, d := range byName[n].DependsOn() {
			if _, ok := byName[d]; !ok {
				return errors.New("missing dependency: " + n + " depends on " + d)
			}
			if err := visit(d); err != nil {
				return err
			}
		}
		inProgress[n] = false
		visited[n] = true
		out = append(out, byName[n])
		return nil
	}

	// stable order regardless of registration order
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name())
	}
	sort.Strings(names)

	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}
