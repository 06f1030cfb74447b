// Package registration settles a student's semester course allocation:
// one wallet debit and N allocation flips committed as a single unit of
// work, retryable by a flaky client without double-charging.
package registration

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/catalog"
	"github.com/campuswallet/registration/internal/domain"
	"github.com/campuswallet/registration/internal/metrics"
)

type semesterRepo interface {
	GetActive(ctx context.Context) (*domain.Semester, error)
}

type transactionRepo interface {
	CreatePending(ctx context.Context, t *domain.RegistrationTransaction) error
	GetLive(ctx context.Context, studentID, semesterID uuid.UUID) (*domain.RegistrationTransaction, error)
	MarkCommitted(ctx context.Context, tx *sql.Tx, id uuid.UUID, balanceAfter int64, committedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.RegistrationTransaction, error)
}

type walletRepo interface {
	GetByStudentTx(ctx context.Context, tx *sql.Tx, studentID uuid.UUID) (*domain.WalletAccount, error)
	Debit(ctx context.Context, tx *sql.Tx, studentID uuid.UUID, amount int64, expectedVersion int64) error
}

type allocationRepo interface {
	MarkRegistered(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, registeredAt time.Time) (int64, error)
}

type catalogReader interface {
	GetAllocatedCourses(ctx context.Context, studentID uuid.UUID) (*catalog.AllocatedCoursesView, error)
}

type Service struct {
	semesters    semesterRepo
	transactions transactionRepo
	wallets      walletRepo
	allocations  allocationRepo
	catalog      catalogReader
	db           *sql.DB
	metrics      *metrics.Metrics

	commitBudget time.Duration
	maxRetries   int
	now          func() time.Time
}

func NewService(
	semesters semesterRepo,
	transactions transactionRepo,
	wallets walletRepo,
	allocations allocationRepo,
	catalog catalogReader,
	db *sql.DB,
	m *metrics.Metrics,
	commitBudget time.Duration,
	maxRetries int,
) *Service {
	return &Service{
		semesters:    semesters,
		transactions: transactions,
		wallets:      wallets,
		allocations:  allocations,
		catalog:      catalog,
		db:           db,
		metrics:      m,
		commitBudget: commitBudget,
		maxRetries:   maxRetries,
		// Truncated to what TIMESTAMPTZ stores, so the commit time on the
		// first receipt matches the value a replay scans back from the row.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}
