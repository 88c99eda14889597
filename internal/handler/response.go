package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

// Response is the uniform API envelope
type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError renders err through the error taxonomy. Anything outside
// the taxonomy is logged and surfaced as a bare 500 without internal
// detail.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Code == apperrors.ErrInternal {
			log.Error().Err(appErr.Err).Str("path", c.Request.URL.Path).Msg("internal error")
		}
		c.JSON(appErr.StatusCode(), &Response{
			Status:  "error",
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unexpected error")
	c.JSON(500, NewErrorResponse("internal server error"))
}
