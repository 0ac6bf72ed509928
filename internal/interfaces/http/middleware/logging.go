package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// Logging logs one line per request once the handler chain has finished.
// Server errors log at error level, client errors at warn.
func Logging(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			err := errors.New(http.StatusText(status))
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			log.Error(ctx, "Request failed", err, fields)
		case status >= http.StatusBadRequest:
			log.Warn(ctx, "Request rejected", fields)
		default:
			log.Info(ctx, "Request processed", fields)
		}
	}
}

// Recovery turns a panic into a 500 response in the standard envelope.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				log.Error(c.Request.Context(), "Panic recovered", err, logger.Fields{"path": c.Request.URL.Path})
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.ErrorResponse(errors.ErrServerError("unexpected failure"), c.GetString(ContextKeyTraceID)))
			}
		}()
		c.Next()
	}
}
