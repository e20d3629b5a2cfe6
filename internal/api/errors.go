package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/clinicdesk/internal/api/shared"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/service/auth"
	"github.com/phrazzld/clinicdesk/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPathNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDuplicateEntry),
		errors.Is(err, domain.ErrAppointmentConflict),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidTimeRange),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Invalid token"
	case errors.Is(err, domain.ErrMedicineNotFound):
		return "Medicine not found"
	case errors.Is(err, domain.ErrAppointmentNotFound):
		return "Appointment not found"
	case errors.Is(err, domain.ErrReminderNotFound):
		return "Reminder not found"
	case errors.Is(err, domain.ErrPathNotFound):
		return "Directory path not found"
	case errors.Is(err, domain.ErrNotFound), store.IsNotFoundError(err):
		return "Not found"
	case errors.Is(err, domain.ErrAppointmentConflict):
		return "Appointment overlaps an existing appointment"
	case errors.Is(err, domain.ErrDuplicateEntry):
		return "Entry already exists"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "Insufficient stock"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "Invalid quantity"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Invalid amount"
	case errors.Is(err, domain.ErrInvalidDateRange):
		return "Invalid date range"
	case errors.Is(err, domain.ErrInvalidTimeRange):
		return "Start time must be before end time"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid data"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a request decoding or validation error into a
// short message naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	if MapErrorToStatusCode(err) == http.StatusBadRequest {
		return GetSafeErrorMessage(err)
	}
	return "Invalid request format"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "datetime", "len":
		return "invalid format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted detail.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

// handleRequestError reports a malformed or invalid request body.
func handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}
