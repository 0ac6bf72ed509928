// Package handlers implements the HTTP handlers of the ESG API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// traceIDKey matches the key the observability middleware stores the trace ID under.
const traceIDKey = string(constants.ContextKeyTraceID)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.SuccessResponse(data, c.GetString(traceIDKey)))
}

// bindJSON decodes the body into req, answering 400 on malformed input.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse(errors.ErrInvalidRequest("malformed request body: "+err.Error()), c.GetString(traceIDKey)))
		return false
	}
	return true
}

// handleError writes err in the standard envelope. Structured errors keep their
// status; anything else is logged and reported as a 500.
func handleError(c *gin.Context, log logger.Logger, err error, operation string) {
	ctx := c.Request.Context()
	status := dto.StatusCode(err)

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error(ctx, "Request failed", err, logger.Fields{"operation": operation})
	} else if e, ok := errors.AsESGError(err); ok {
		log.Warn(ctx, "Request rejected", logger.Fields{
			"operation":  operation,
			"error_code": string(e.Code()),
			"error":      e.Error(),
		})
	}

	c.JSON(status, dto.ErrorResponse(err, c.GetString(traceIDKey)))
}
