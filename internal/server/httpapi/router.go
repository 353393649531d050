package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/selfplanner/internal/logging"
	"github.com/dmitrijs2005/selfplanner/internal/server/observability"
)

// NewRouter assembles the gin engine: recovery, request id and
// logging, metrics, and the API routes.
func NewRouter(h *Handler, log logging.Logger, env string, secret []byte) *gin.Engine {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	if h.prom != nil {
		r.Use(h.prom.GinHandleMiddleware())
	}

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/login", h.Login)

	protected := api.Group("")
	protected.Use(OptionalAuth(secret))
	protected.POST("/sync", h.Sync)
	protected.GET("/planner/:userID", h.GetPlanner)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// NewProm registers the server metrics on the default registry.
func NewProm() *observability.Prom {
	return observability.NewProm(prometheus.DefaultRegisterer)
}

// timeouts shared by the HTTP server setup.
const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 15 * time.Second
	WriteTimeout      = 15 * time.Second
	IdleTimeout       = 60 * time.Second
)
