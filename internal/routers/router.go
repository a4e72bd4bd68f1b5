package routers

import (
	"github.com/gin-gonic/gin"

	"cpu-burn-lab/internal/handlers"
	"cpu-burn-lab/internal/middleware"
	"cpu-burn-lab/internal/observability"
)

// NewRouter registers all endpoints and applies per-endpoint instrumentation.
func NewRouter(m *observability.Metrics, h *handlers.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	r.GET("/health", h.Health)

	r.GET("/", middleware.Instrument(m, "index", h.Index))
	r.GET("/info", middleware.Instrument(m, "info", h.Info))
	r.GET("/stress", middleware.Instrument(m, "stress", h.Stress))

	return r
}
