package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/skekre98/cfgstack/build"
	"github.com/skekre98/cfgstack/config"
)

var (
	rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfgstack_renders_total",
		Help: "Renders served over HTTP, by outcome.",
	}, []string{"outcome"})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cfgstack_render_duration_seconds",
		Help:    "Time spent folding and rendering documents for one request.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)

const (
	outcomeOK             = "ok"
	outcomeMissingProfile = "missing_profile"
	outcomeParseError     = "parse_error"
	outcomeBadRequest     = "bad_request"
	outcomeError          = "error"
)

var contentTypes = map[string]string{
	"toml": "application/toml; charset=utf-8",
	"yaml": "application/yaml; charset=utf-8",
}

// renderRoutes serves the layered documents described by base. Every request
// folds the documents afresh; nothing is cached or written.
func renderRoutes(r Router, base build.Plan) {
	r.GET("/profiles", func(c *gin.Context) {
		names, err := build.ListProfiles(base.ProfilesDir)
		if err != nil {
			Problem(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		if names == nil {
			names = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"default": base.Profile, "profiles": names})
	})

	r.GET("/render", func(c *gin.Context) {
		timer := prometheus.NewTimer(renderDuration)
		defer timer.ObserveDuration()

		plan := base
		if p := c.Query("profile"); p != "" {
			if strings.Contains(p, "..") {
				rendersTotal.WithLabelValues(outcomeBadRequest).Inc()
				Problem(c, http.StatusBadRequest, "Bad Request", "profile must stay inside the profiles directory")
				return
			}
			plan = plan.WithProfile(p)
		}
		if f := c.Query("format"); f != "" {
			if _, ok := contentTypes[f]; !ok {
				rendersTotal.WithLabelValues(outcomeBadRequest).Inc()
				Problem(c, http.StatusBadRequest, "Bad Request", "format must be toml or yaml")
				return
			}
			plan.Format = f
		}

		res, err := build.Render(c.Request.Context(), plan)
		if err != nil {
			renderProblem(c, err)
			return
		}
		rendersTotal.WithLabelValues(outcomeOK).Inc()
		c.Header("X-Profile", plan.ProfileFile())
		c.Data(http.StatusOK, contentTypes[formatOf(plan)], []byte(res.Text))
	})
}

func renderProblem(c *gin.Context, err error) {
	var (
		missing *build.MissingProfileError
		perr    *config.ParseError
		uerr    *config.UnsupportedValueError
	)
	switch {
	case errors.As(err, &missing):
		rendersTotal.WithLabelValues(outcomeMissingProfile).Inc()
		Problem(c, http.StatusNotFound, "Profile Not Found", err.Error())
	case errors.As(err, &perr), errors.As(err, &uerr):
		rendersTotal.WithLabelValues(outcomeParseError).Inc()
		Problem(c, http.StatusUnprocessableEntity, "Invalid Document", err.Error())
	default:
		rendersTotal.WithLabelValues(outcomeError).Inc()
		Problem(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

func formatOf(p build.Plan) string {
	if p.Format == "yaml" {
		return "yaml"
	}
	return "toml"
}
