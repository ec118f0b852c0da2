package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/app/models/dto"
	"github.com/yigit/unirecords/internal/pkg/apperrors"
	"github.com/yigit/unirecords/internal/pkg/metrics"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestId"

// RequestID assigns every request an ID, reusing a client supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger attaches a request scoped logger to the request context and
// logs every completed request.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		lgr := base.With().Str("requestId", GetRequestID(c)).Logger()
		c.Request = c.Request.WithContext(lgr.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		event := lgr.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = lgr.Error()
		case status >= http.StatusBadRequest:
			event = lgr.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIp", c.ClientIP()).
			Msg("Request completed")
	}
}

// Metrics records request counts and latency by matched route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Recovery turns panics outside traced handlers into an envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewAPIResponse(
			dto.ErrorResponse{Error: apperrors.MsgInternalServer}, nil,
		))
	})
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return Untraced(func(*gin.Context) (int, any) {
		return http.StatusNotFound, dto.ErrorResponse{Error: "Not found"}
	})
}

// MethodNotAllowed answers known routes requested with an unsupported method.
func MethodNotAllowed() gin.HandlerFunc {
	return Untraced(func(*gin.Context) (int, any) {
		return http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed"}
	})
}
