package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletAccount is the per-student balance debited by a settlement. The
// version column is the optimistic-concurrency token: every debit is
// conditional on the version being unchanged since it was read.
type WalletAccount struct {
	StudentID uuid.UUID
	Balance   int64
	Currency  Currency
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
