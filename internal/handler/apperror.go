package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrNoActiveSemester     = &AppError{http.StatusUnprocessableEntity, "NO_ACTIVE_SEMESTER", "No active semester"}
	ErrDeadlinePassed       = &AppError{http.StatusUnprocessableEntity, "DEADLINE_PASSED", "Registration deadline has passed"}
	ErrNothingToRegister    = &AppError{http.StatusUnprocessableEntity, "NOTHING_TO_REGISTER", "No pending course allocations to register"}
	ErrAlreadyRegistered    = &AppError{http.StatusConflict, "ALREADY_REGISTERED", "Allocated courses are already registered"}
	ErrInsufficientBalance  = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "Wallet balance is below the registration total"}
	ErrRegistrationInFlight = &AppError{http.StatusConflict, "REGISTRATION_IN_PROGRESS", "A registration attempt is already in progress, retry shortly"}
	ErrVersionConflict      = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Wallet was modified concurrently, please retry"}
	ErrSettlementTimeout    = &AppError{http.StatusGatewayTimeout, "SETTLEMENT_TIMEOUT", "Registration timed out, it is safe to retry"}
	ErrWalletNotFound       = &AppError{http.StatusUnprocessableEntity, "WALLET_NOT_FOUND", "No wallet account for this student"}
)
