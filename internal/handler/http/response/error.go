package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindInsufficientBalance:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindPermission:
		return http.StatusForbidden
	case apperror.KindStateConflict, apperror.KindOverlap:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError maps domain errors to HTTP responses. Anything that is not a
// validation or domain error is logged and reported as a 500.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Error(w, StatusFor(appErr.Kind), appErr.Code, appErr.Message, nil)
		return
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
