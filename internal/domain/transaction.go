package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCommitted TransactionStatus = "committed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Failure reasons recorded on a failed transaction row for audit.
const (
	FailureReasonInsufficientBalance = "insufficient_balance"
	FailureReasonVersionConflict     = "version_conflict"
	FailureReasonAllocationDrift     = "allocation_state_drift"
	FailureReasonTimeout             = "timeout"
	FailureReasonStalePending        = "stale_pending"
	FailureReasonInternal            = "internal_error"
)

// RegistrationTransaction is the durable record of a settlement attempt.
// A row is created pending before the wallet is touched, and flips to
// committed in the same database transaction as the debit and the
// allocation state changes, or to failed otherwise. Committed and failed
// rows are immutable.
type RegistrationTransaction struct {
	ID             uuid.UUID
	IdempotencyKey string
	StudentID      uuid.UUID
	SemesterID     uuid.UUID
	AllocationIDs  []uuid.UUID
	TotalAmount    int64
	Currency       Currency
	CourseCount    int
	Status         TransactionStatus
	FailureReason  *string
	BalanceAfter   *int64
	CreatedAt      time.Time
	CommittedAt    *time.Time
}
