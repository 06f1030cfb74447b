package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is derived from a committed transaction row and nothing else,
// so regenerating it for a retried request yields identical output.
type Receipt struct {
	TransactionID         uuid.UUID
	RegisteredCourseCount int
	AmountDebited         int64
	AmountDisplay         string
	Currency              Currency
	NewBalance            int64
	IssuedAt              time.Time
}

// FormatAmount renders an amount held in minor units (kobo) as a
// two-decimal major-unit string for display, e.g. 3500000 -> "35000.00".
func FormatAmount(minor int64) string {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).StringFixed(2)
}
