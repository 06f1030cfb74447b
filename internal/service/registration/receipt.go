package registration

import (
	"fmt"

	"github.com/campuswallet/registration/internal/domain"
)

// GenerateReceipt derives the confirmation record from a committed
// transaction row. Every field comes from the row, so calling it twice
// for the same transaction yields identical output; that is what lets a
// retried request receive the original receipt.
func GenerateReceipt(t *domain.RegistrationTransaction) (*domain.Receipt, error) {
	if t.Status != domain.TransactionStatusCommitted {
		return nil, fmt.Errorf("GenerateReceipt: transaction %s is %s, not committed", t.ID, t.Status)
	}
	if t.CommittedAt == nil || t.BalanceAfter == nil {
		return nil, fmt.Errorf("GenerateReceipt: transaction %s missing commit fields", t.ID)
	}

	return &domain.Receipt{
		TransactionID:         t.ID,
		RegisteredCourseCount: t.CourseCount,
		AmountDebited:         t.TotalAmount,
		AmountDisplay:         domain.FormatAmount(t.TotalAmount),
		Currency:              t.Currency,
		NewBalance:            *t.BalanceAfter,
		IssuedAt:              *t.CommittedAt,
	}, nil
}
