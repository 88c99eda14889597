package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

// BindingError converts a gin binding failure into a validation error
// with per-field details so clients see which field was rejected.
func BindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: tagMessage(fe),
			})
		}
		return apperrors.Validation("invalid request body", fields...)
	}
	return apperrors.Validation(err.Error())
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
