package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/response"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency the health check probes.
type Pinger func(ctx context.Context) error

// SystemHandler serves the banner and health endpoints.
type SystemHandler struct {
	pingers   map[string]Pinger
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler probing the named dependencies.
func NewSystemHandler(pingers map[string]Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pingers:   pingers,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Root godoc
// GET /
// Plain-text banner.
func (h *SystemHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Summer school is running!")
}

type healthReport struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks"`
}

// Health godoc
// GET /health
// Probes every dependency. Any failure turns the report into a 503.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Checks:     make(map[string]string, len(h.pingers)),
	}
	for name, ping := range h.pingers {
		if err := ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			report.Checks[name] = "down"
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "up"
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}
