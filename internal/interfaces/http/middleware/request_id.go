// Package middleware provides the gin middleware chain of the ESG HTTP API.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/esg/pkg/constants"
)

// RequestID propagates the X-Request-ID header, generating one when absent.
// The ID is stored in the gin context and the request context so that log
// lines carry it.
// RequestID 透传或生成请求 ID。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID))
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}
