package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skekre98/cfgstack/build"
	"github.com/skekre98/cfgstack/config"
	"github.com/skekre98/cfgstack/core"
	"github.com/skekre98/cfgstack/web"
)

const Name = "actuator"

// Info identifies the running binary on /info.
type Info struct {
	Name    string
	Version string
}

type module struct {
	info Info
}

func Module(info Info) core.Module { return &module{info: info} }

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name} }

func (m *module) Configure(c *core.Container) error {
	engine := web.Engine(c)
	cfg := core.Must[config.Root](c)
	plan := build.NewPlan(cfg)

	group := engine.Group(cfg.Server.ActuatorPath)

	// UP while the default profile can be found; renders need nothing else.
	group.GET("/health", func(ctx *gin.Context) {
		status, code := "UP", http.StatusOK
		profile := gin.H{"status": "UP", "path": plan.ProfilePath}
		if _, err := os.Stat(plan.ProfilePath); err != nil {
			status, code = "DOWN", http.StatusServiceUnavailable
			profile["status"] = "DOWN"
			profile["error"] = err.Error()
		}
		ctx.JSON(code, gin.H{
			"status": status,
			"checks": []gin.H{{"name": "default-profile", "details": profile}},
		})
	})

	group.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    m.info.Name,
				"version": m.info.Version,
			},
			"documents": gin.H{
				"template": plan.Template,
				"profiles": plan.ProfilesDir,
				"profile":  plan.Profile,
				"local":    plan.Local,
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"time":         time.Now().UTC().Format(time.RFC3339),
				"pid":          os.Getpid(),
			},
		})
	})

	if !cfg.Server.DisableMetrics {
		group.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return nil
}

func (m *module) Start(_ context.Context, _ *core.Container) error { return nil }
func (m *module) Stop(_ context.Context, _ *core.Container) error  { return nil }
