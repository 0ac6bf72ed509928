package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/pkg/logger"
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
	log     logger.Logger
}

// NewHealthHandler creates a new HealthHandler. checks maps a dependency name
// such as "database" or "cache" to its probe.
func NewHealthHandler(checks map[string]Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 3 * time.Second,
		log:     log.WithComponent("health_handler"),
	}
}

// Liveness reports that the process is serving requests.
// GET /health/live
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// Readiness probes every dependency concurrently and answers 503 when any fails.
// GET /health/ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := h.performChecks(c.Request.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	for name, result := range checks {
		if result != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(c.Request.Context(), "Dependency check failed", logger.Fields{
				"dependency": name,
				"result":     result,
			})
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var wg sync.WaitGroup
	mu := &sync.Mutex{}
	results := make(map[string]string, len(h.checks))

	wg.Add(len(h.checks))
	for name, probe := range h.checks {
		go func(name string, probe Pinger) {
			defer wg.Done()
			status := "ok"
			if err := probe.Ping(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			results[name] = status
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()
	return results
}

//Personal.AI order the ending
