package middleware

import (
	"time"

	"cdr.dev/slog/v3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestLogger tags each request with an id and logs it once it completes.
func RequestLogger(logger slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []slog.Field{
			slog.F("request_id", requestID),
			slog.F("method", c.Request.Method),
			slog.F("path", c.Request.URL.Path),
			slog.F("status", c.Writer.Status()),
			slog.F("latency", time.Since(start)),
			slog.F("ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, slog.F("query", q))
		}

		ctx := c.Request.Context()
		switch {
		case c.Writer.Status() >= 500:
			logger.Warn(ctx, "request failed", fields...)
		default:
			logger.Info(ctx, "request", fields...)
		}
	}
}
