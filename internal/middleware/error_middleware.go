package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/app/models/dto"
	"github.com/yigit/unirecords/internal/pkg/apperrors"
)

// --- Central Error Handling ---

// HandleAPIError maps err to its HTTP status and client payload. Server side
// failures are logged with the request's logger.
func HandleAPIError(c *gin.Context, err error) (int, dto.ErrorResponse) {
	status := StatusFor(err)
	message := apperrors.Message(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		if message == "" {
			message = apperrors.MsgInternalServer
		}
	}
	return status, dto.ErrorResponse{Error: message}
}

// StatusFor returns the HTTP status of err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
