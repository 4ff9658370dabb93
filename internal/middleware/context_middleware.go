package middleware

import (
	"time"

	"go-employee-mgmt/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	// MaxRequestIDLength matches outbox_events.request_id.
	MaxRequestIDLength = 64
)

// ContextLogger assigns a request id and stores a logger tagged with it in
// the request context, so services can log without knowing about gin.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)
		c.Set("request_id", rid)

		reqLogger := logger.With(zap.String("request_id", rid))

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// validRequestID accepts non-empty printable ASCII that fits the outbox column.
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}

// AccessLog writes one line per request once the handler chain has finished.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := contextutil.GetLogger(c.Request.Context(), zap.L())
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= 500 {
			l.Error("http request", fields...)
			return
		}
		l.Info("http request", fields...)
	}
}
