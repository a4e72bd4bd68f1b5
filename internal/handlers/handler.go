package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cpu-burn-lab/internal/burn"
	"cpu-burn-lab/internal/log"
	"cpu-burn-lab/internal/logfields"
	"cpu-burn-lab/internal/models"
)

const (
	applicationName = "CPU Burn Lab - parallel CPU stress demo (Go)"
	stressPattern   = "direct call (gin handler -> burn.Coordinator) with completion callback"
)

// Burner runs one CPU burn and blocks until it is done.
type Burner interface {
	Run(ctx context.Context, threadCount, durationSeconds int) (models.StressResult, error)
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	Burner Burner

	// Used by /stress when the query omits threads or duration.
	DefaultThreads  int
	DefaultDuration int
}

// New creates a new Handlers instance with dependencies injected.
func New(b Burner, defaultThreads, defaultDuration int) *Handlers {
	return &Handlers{Burner: b, DefaultThreads: defaultThreads, DefaultDuration: defaultDuration}
}

// Index describes the service and its endpoints.
func (h *Handlers) Index(c *gin.Context) {
	c.JSON(http.StatusOK, models.InfoResponse{
		Application: applicationName,
		Pattern:     stressPattern,
		Endpoints: map[string]string{
			"GET /":       "This info page",
			"GET /health": "Liveness probe",
			"GET /info":   "Host and runtime information",
			"GET /stress": "Burn CPU with parallel workers for a fixed duration",
		},
		Parameters: map[string]string{
			"threads":  fmt.Sprintf("Number of CPU-burning workers (default: %d)", h.DefaultThreads),
			"duration": fmt.Sprintf("Duration in seconds (default: %d)", h.DefaultDuration),
		},
		Example: fmt.Sprintf("/stress?threads=%d&duration=%d", h.DefaultThreads, h.DefaultDuration),
	})
}

// Health is a simple liveness endpoint.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Info reports the host and Go runtime the service is burning.
func (h *Handlers) Info(c *gin.Context) {
	hostname, err := os.Hostname()
	if err != nil {
		log.G(c.Request.Context()).WithError(err).Warn("could not read hostname")
	}
	c.JSON(http.StatusOK, models.EnvInfoResponse{
		Hostname:       hostname,
		PID:            os.Getpid(),
		ProcessorCount: runtime.NumCPU(),
		GOMAXPROCS:     runtime.GOMAXPROCS(0),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		GoVersion:      runtime.Version(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// Stress runs the burn synchronously and reports the totals.
func (h *Handlers) Stress(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	req := models.StressRequest{
		ThreadCount:     h.DefaultThreads,
		DurationSeconds: h.DefaultDuration,
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		respondErr(c, "stress", start, http.StatusBadRequest, err)
		return
	}

	log.G(ctx).WithFields(logrus.Fields{
		logfields.Threads:  req.ThreadCount,
		logfields.Duration: req.DurationSeconds,
	}).Info("stress requested")

	res, err := h.Burner.Run(ctx, req.ThreadCount, req.DurationSeconds)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, burn.ErrResourceExhaustion) {
			status = http.StatusServiceUnavailable
		}
		log.G(ctx).WithError(err).Error("stress failed")
		respondErr(c, "stress", start, status, err)
		return
	}

	c.JSON(http.StatusOK, models.StressResponse{
		Status:          "completed",
		Pattern:         stressPattern,
		RunID:           res.RunID,
		ThreadsUsed:     res.ThreadCount,
		DurationSeconds: req.DurationSeconds,
		TotalIterations: res.TotalIterations,
		ElapsedMs:       res.ElapsedMillis,
		WaitInterrupted: res.WaitInterrupted,
		Description: fmt.Sprintf("Spawned %d workers performing tight math loops (sqrt, sin, cos) "+
			"for %d seconds to drive CPU to 100%%. They completed %d batches in %d ms.",
			res.ThreadCount, req.DurationSeconds, res.TotalIterations, res.ElapsedMillis),
	})
}

// LogCompletion writes the summary of a finished burn run. It is meant to be
// passed to [burn.WithOnComplete].
func LogCompletion(ctx context.Context, res models.StressResult) {
	log.G(ctx).WithFields(logrus.Fields{
		logfields.RunID:      res.RunID,
		logfields.Threads:    res.ThreadCount,
		logfields.Iterations: res.TotalIterations,
		logfields.ElapsedMs:  res.ElapsedMillis,
	}).Info("cpu stress completed")
}

func respondErr(c *gin.Context, mode string, start time.Time, status int, err error) {
	c.JSON(status, models.ErrorResponse{
		Mode:    mode,
		TotalMs: time.Since(start).Milliseconds(),
		Error:   err.Error(),
	})
}
