package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/storeline/storeadmin/internal/domain"
)

// errorBody is the structured error payload. Raw storage errors never reach
// it; only the taxonomy code and a safe message do.
type errorBody struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondSuccess writes a 200 with the payload.
func respondSuccess(w http.ResponseWriter, payload any) {
	respondJSON(w, http.StatusOK, payload)
}

// respondError maps a classified error to its transport status. Unclassified
// failures log at error level and become an opaque 500.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := domain.CodeOf(err)
	status := statusFor(code)

	message := "internal error"
	switch code {
	case domain.CodeValidation:
		message = "validation failed"
	case domain.CodeForbidden:
		message = "not permitted"
	case domain.CodeNotFound:
		message = "not found"
	case domain.CodeConflict:
		message = "conflict, batch rolled back"
	default:
		logger.Error("unclassified failure", zap.Error(err))
	}

	respondJSON(w, status, errorBody{
		Code:    string(code),
		Message: message,
		Fields:  domain.FieldErrorsOf(err),
	})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
