package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswallet/registration/internal/domain"
	"github.com/campuswallet/registration/internal/repository"
	"github.com/campuswallet/registration/internal/testutil"
)

func TestWalletDebit_VersionConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	ctx := context.Background()

	studentID := uuid.New()
	testutil.SeedWallet(t, db, studentID, 10000)

	// A concurrent writer bumps the version after our read.
	require.NoError(t, wallets.Credit(ctx, studentID, 500))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = wallets.Debit(ctx, tx, studentID, 1000, 0)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestWalletDebit_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	ctx := context.Background()

	studentID := uuid.New()
	testutil.SeedWallet(t, db, studentID, 10000)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	wallet, err := wallets.GetByStudentTx(ctx, tx, studentID)
	require.NoError(t, err)

	require.NoError(t, wallets.Debit(ctx, tx, studentID, 4000, wallet.Version))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(6000), testutil.GetWalletBalance(t, db, studentID))

	updated, err := wallets.GetByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, wallet.Version+1, updated.Version)
}

func TestWalletDebit_OverdraftRejectedBySchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	ctx := context.Background()

	studentID := uuid.New()
	testutil.SeedWallet(t, db, studentID, 1000)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	// The balance >= 0 check is the backstop for the window between the
	// coordinator's balance check and the conditional update.
	err = wallets.Debit(ctx, tx, studentID, 5000, 0)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, int64(1000), testutil.GetWalletBalance(t, db, studentID))
}

func TestWalletCredit_MissingWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)

	err := wallets.Credit(context.Background(), uuid.New(), 1000)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestTransactionCreatePending_DuplicateLiveRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	transactions := repository.NewTransactionRepository(db)
	ctx := context.Background()

	semester := testutil.SeedSemester(t, db, time.Now().UTC().Add(24*time.Hour), domain.SemesterStatusActive)
	studentID := uuid.New()
	allocationID := uuid.New()

	base := domain.RegistrationTransaction{
		StudentID:     studentID,
		SemesterID:    semester.ID,
		AllocationIDs: []uuid.UUID{allocationID},
		TotalAmount:   20000,
		Currency:      domain.CurrencyNGN,
		CourseCount:   1,
	}

	first := base
	first.ID = uuid.New()
	first.IdempotencyKey = "key-one"
	first.CreatedAt = time.Now().UTC()
	require.NoError(t, transactions.CreatePending(ctx, &first))

	second := base
	second.ID = uuid.New()
	second.IdempotencyKey = "key-two"
	second.CreatedAt = time.Now().UTC()
	err := transactions.CreatePending(ctx, &second)
	require.ErrorIs(t, err, repository.ErrDuplicateTransaction)

	// A failed row stops occupying the live slot.
	require.NoError(t, transactions.MarkFailed(ctx, first.ID, domain.FailureReasonInsufficientBalance))
	require.NoError(t, transactions.CreatePending(ctx, &second))

	live, err := transactions.GetLive(ctx, studentID, semester.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, live.ID)
	assert.Equal(t, []uuid.UUID{allocationID}, live.AllocationIDs)
}
