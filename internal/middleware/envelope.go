package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/app/models/dto"
	"github.com/yigit/unirecords/internal/pkg/apperrors"
	"github.com/yigit/unirecords/internal/pkg/querylog"
)

// HandlerFunc serves one request using the request's trace session. It
// returns the status and payload on success, or an error that is mapped by
// HandleAPIError.
type HandlerFunc func(c *gin.Context, session *querylog.Session) (int, any, error)

// Traced adapts h to gin. A fresh session is opened for the request and
// closed when the response is written; the response is always an envelope
// carrying the statements the session traced, including on panic.
//
// The request context is detached from client cancellation so a statement
// that has started is never abandoned half way.
func Traced(tracer *querylog.Tracer, h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithoutCancel(c.Request.Context()))

		session := tracer.Session()
		defer func() {
			if err := session.Close(); err != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("Failed to release trace session")
			}
		}()

		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("Recovered from panic in handler")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewAPIResponse(
					dto.ErrorResponse{Error: apperrors.MsgInternalServer},
					session.Entries(),
				))
			}
		}()

		status, payload, err := h(c, session)
		if err != nil {
			var body dto.ErrorResponse
			status, body = HandleAPIError(c, err)
			payload = body
		}

		c.JSON(status, dto.NewAPIResponse(payload, session.Entries()))
	}
}

// Untraced wraps a payload-only handler in the envelope with an empty trace.
func Untraced(h func(c *gin.Context) (int, any)) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, payload := h(c)
		c.JSON(status, dto.NewAPIResponse(payload, nil))
	}
}
