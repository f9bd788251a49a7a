package logger

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ginLoggerKey = "logger"

type (
	requestID     struct{}
	requestLogger struct{}
)

// headerValue reads header or generates an uuid
func headerValue(r *http.Request, headers ...string) string {
	for _, header := range headers {
		if value := r.Header.Get(header); value != "" {
			return value
		}
	}
	return uuid.New().String()
}

// FromRequest returns the logger bound to the request context, creating one
// tagged with the request id when absent.
func FromRequest(r *http.Request) *zap.Logger {
	ctx := r.Context()
	if value, ok := ctx.Value(requestLogger{}).(*zap.Logger); ok {
		return value
	}

	id := headerValue(r, "Request-ID", "X-Request-ID")
	l := zap.L().With(zap.String("request-id", id))

	ctx = context.WithValue(ctx, requestID{}, id)
	ctx = context.WithValue(ctx, requestLogger{}, l)
	*r = *(r.WithContext(ctx))

	return l
}

func RequestID(ctx context.Context) (value string) {
	value, _ = ctx.Value(requestID{}).(string)
	return
}

// FromContext returns the request scoped logger set by Middleware, or the
// global logger outside of a request.
func FromContext(c *gin.Context) *zap.Logger {
	if c == nil {
		return zap.L()
	}
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	if c.Request != nil {
		return FromRequest(c.Request)
	}
	return zap.L()
}

// Middleware logs one line per request and exposes the request logger to
// handlers through FromContext.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := FromRequest(c.Request)
		c.Set(ginLoggerKey, l)
		c.Header("X-Request-ID", RequestID(c.Request.Context()))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			l.Error("request", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("request", fields...)
		default:
			l.Info("request", fields...)
		}
	}
}
