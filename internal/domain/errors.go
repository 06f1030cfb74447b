package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrNoActiveSemester     = errors.New("no active semester")
	ErrDeadlinePassed       = errors.New("registration deadline passed")
	ErrNothingToRegister    = errors.New("no pending course allocations")
	ErrAlreadyRegistered    = errors.New("allocations already registered")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
	ErrVersionConflict      = errors.New("optimistic lock conflict")
	ErrRegistrationInFlight = errors.New("registration already in progress")
	ErrTimeout              = errors.New("settlement exceeded commit budget")
	ErrWalletNotFound       = errors.New("wallet account not found")
)
