package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// HeaderIdempotencyKey is the request header clients set to make a POST safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// KeyStore atomically claims idempotency keys.
type KeyStore interface {
	// Claim records key for ttl and reports whether it was unused.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// Idempotency returns a Gin middleware that rejects replays of POST requests.
// A request carrying an Idempotency-Key header claims that key, scoped to the
// route and tenant, for cfg.TTL. A second request with the same key gets 409
// Conflict. When the first request fails the key is released so the client can
// retry. Requests without the header pass through untouched, and a store
// outage fails open.
// Idempotency 防止带有 Idempotency-Key 的 POST 请求被重复执行。
func Idempotency(store KeyStore, cfg *config.IdempotencyConfig, log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("idempotency")
	return func(c *gin.Context) {
		if !cfg.Enabled || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > 255 {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse(
				errors.ErrInvalidRequest("Idempotency-Key must be at most 255 characters"), c.GetString(ContextKeyTraceID)))
			return
		}

		ctx := c.Request.Context()
		key := "esg:idem:" + c.Param("tenant_id") + ":" + c.FullPath() + ":" + raw

		isNew, err := store.Claim(ctx, key, cfg.TTL)
		if err != nil {
			log.Warn(ctx, "Idempotency store unavailable, processing request", logger.Fields{"error": err.Error()})
			c.Next()
			return
		}
		if !isNew {
			log.Warn(ctx, "Duplicate request rejected", logger.Fields{"idempotency_key": raw, "route": c.FullPath()})
			c.AbortWithStatusJSON(http.StatusConflict, dto.ErrorResponse(
				errors.ErrConflict("a request with this Idempotency-Key has already been processed"), c.GetString(ContextKeyTraceID)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Warn(ctx, "Failed to release idempotency key", logger.Fields{"error": err.Error()})
			}
		}
	}
}
