package registration_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswallet/registration/internal/domain"
	"github.com/campuswallet/registration/internal/service/registration"
)

func committedTransaction() *domain.RegistrationTransaction {
	committedAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	balanceAfter := int64(15000)
	return &domain.RegistrationTransaction{
		ID:            uuid.MustParse("5d1c0a9e-0b7e-4f27-9a73-2f14f6f4b9d1"),
		StudentID:     uuid.New(),
		SemesterID:    uuid.New(),
		AllocationIDs: []uuid.UUID{uuid.New(), uuid.New()},
		TotalAmount:   35000,
		Currency:      domain.CurrencyNGN,
		CourseCount:   2,
		Status:        domain.TransactionStatusCommitted,
		BalanceAfter:  &balanceAfter,
		CommittedAt:   &committedAt,
	}
}

func TestGenerateReceipt(t *testing.T) {
	txn := committedTransaction()

	receipt, err := registration.GenerateReceipt(txn)
	require.NoError(t, err)

	assert.Equal(t, txn.ID, receipt.TransactionID)
	assert.Equal(t, 2, receipt.RegisteredCourseCount)
	assert.Equal(t, int64(35000), receipt.AmountDebited)
	assert.Equal(t, "350.00", receipt.AmountDisplay)
	assert.Equal(t, int64(15000), receipt.NewBalance)
	assert.Equal(t, *txn.CommittedAt, receipt.IssuedAt)
}

func TestGenerateReceipt_Idempotent(t *testing.T) {
	txn := committedTransaction()

	first, err := registration.GenerateReceipt(txn)
	require.NoError(t, err)
	second, err := registration.GenerateReceipt(txn)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestGenerateReceipt_RejectsNonCommitted(t *testing.T) {
	for _, status := range []domain.TransactionStatus{
		domain.TransactionStatusPending,
		domain.TransactionStatusFailed,
	} {
		txn := committedTransaction()
		txn.Status = status

		_, err := registration.GenerateReceipt(txn)
		assert.Error(t, err, "status %s", status)
	}
}

func TestGenerateReceipt_RejectsMissingCommitFields(t *testing.T) {
	txn := committedTransaction()
	txn.BalanceAfter = nil

	_, err := registration.GenerateReceipt(txn)
	assert.Error(t, err)
}
