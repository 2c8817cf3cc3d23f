package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/cfgstack/build"
	"github.com/skekre98/cfgstack/config"
	"github.com/skekre98/cfgstack/core"
)

const Name = "web"

func Engine(c *core.Container) *gin.Engine {
	return core.Must[*gin.Engine](c)
}

// Module serves the render endpoints over HTTP. It needs config.Root and
// *slog.Logger in the container.
func Module(opts ...Option) core.Module {
	var options Options
	for _, o := range opts {
		o(&options)
	}
	return &webModule{opts: options}
}

type webModule struct {
	opts   Options
	server *http.Server
}

func (m *webModule) Name() string        { return Name }
func (m *webModule) DependsOn() []string { return nil }

func (m *webModule) Configure(c *core.Container) error {
	cfg := core.Must[config.Root](c)
	l := core.Must[*slog.Logger](c)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(RecoveryProblem(l))
	r.Use(AccessLog(l))
	r.Use(m.opts.Middlewares...)

	renderRoutes(r, build.NewPlan(cfg))
	for _, reg := range m.opts.Routes {
		reg(r)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	core.Provide(c, r)
	core.Provide(c, srv)
	m.server = srv
	return nil
}

func (m *webModule) Start(ctx context.Context, c *core.Container) error {
	l := core.Must[*slog.Logger](c)
	go func() {
		l.Info("http server starting", "addr", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", "error", err)
		}
	}()
	return nil
}

func (m *webModule) Stop(ctx context.Context, c *core.Container) error {
	if err := m.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
