package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuswallet/registration/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrNoActiveSemester):
		appErr = ErrNoActiveSemester
	case errors.Is(err, domain.ErrDeadlinePassed):
		appErr = ErrDeadlinePassed
	case errors.Is(err, domain.ErrNothingToRegister):
		appErr = ErrNothingToRegister
	case errors.Is(err, domain.ErrAlreadyRegistered):
		appErr = ErrAlreadyRegistered
	case errors.Is(err, domain.ErrInsufficientBalance):
		appErr = ErrInsufficientBalance
	case errors.Is(err, domain.ErrRegistrationInFlight):
		appErr = ErrRegistrationInFlight
	case errors.Is(err, domain.ErrVersionConflict):
		appErr = ErrVersionConflict
	case errors.Is(err, domain.ErrTimeout):
		appErr = ErrSettlementTimeout
	case errors.Is(err, domain.ErrWalletNotFound):
		appErr = ErrWalletNotFound
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
