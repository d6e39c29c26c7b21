package httpx

import (
	"net/http"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
)

// statusForCode maps application error codes to HTTP status codes.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteAppError writes an error as a JSON response. AppError codes map to
// their HTTP status; anything else is a 500 with a generic message so internal
// details never leak to clients.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		WriteJSON(w, http.StatusInternalServerError, errorBody{
			Error:   string(apperrors.ErrCodeInternal),
			Message: "An unexpected error occurred.",
		})
		return
	}

	body := errorBody{
		Error:   string(code),
		Message: err.Error(),
		Field:   apperrors.GetField(err),
	}
	// Unavailable errors carry backend detail; clients get a generic line
	// while the detail is logged where the error originated.
	if code == apperrors.ErrCodeInternal || code == apperrors.ErrCodeUnavailable {
		body.Message = "An unexpected error occurred."
	}
	WriteJSON(w, statusForCode(code), body)
}
