// Package http is the external request adapter: Gin REST handlers for
// edit/run/configure_database plus a Gorilla WebSocket push channel for
// the subscription adapter, grounded on mbflow's internal/infrastructure/
// api/rest package (middleware_recovery.go's panic-recovery pattern,
// middleware_logging.go's request-ID-per-request idiom, helpers.go's
// envelope response shape) narrowed to the handful of routes the
// notebook engine exposes — the auth/billing/credentials/multi-tenant
// surface mbflow's REST tree carries has no equivalent here.
package http

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carter293/reactive-notebook/internal/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	contextKeyRequestID = "request_id"
)

// RequestID assigns (or propagates) a request ID onto the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// GetRequestID reads back the ID RequestID() attached to this request.
func GetRequestID(c *gin.Context) string {
	id, ok := c.Get(contextKeyRequestID)
	if !ok {
		return ""
	}
	return id.(string)
}

// RequestLogger logs start/completion of every request at a level keyed
// off the response status, mirroring mbflow's LoggingMiddleware.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		args := []any{
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}

		switch {
		case status >= 500:
			log.Error("request completed", args...)
		case status >= 400:
			log.Warn("request completed", args...)
		default:
			log.Info("request completed", args...)
		}
	}
}

// Recovery converts a panicking handler into a 500 response instead of
// crashing the gateway process, mirroring mbflow's RecoveryMiddleware.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"request_id", GetRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"error", r,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}
