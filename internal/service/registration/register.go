package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/domain"
	"github.com/campuswallet/registration/internal/logging"
	"github.com/campuswallet/registration/internal/repository"
)

// Register settles the student's full allocation for the active
// semester. Exactly one committed settlement can exist per student and
// semester; a retry after any kind of client-side failure returns the
// original receipt instead of debiting again.
func (s *Service) Register(ctx context.Context, studentID uuid.UUID) (*domain.Receipt, error) {
	log := logging.FromContext(ctx)

	semester, err := s.semesters.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	existing, err := s.transactions.GetLive(ctx, studentID, semester.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Register: %w", err)
	}
	if existing != nil {
		return s.replay(ctx, existing)
	}

	// Preconditions come before any wallet access: a request past the
	// deadline must never read the ledger.
	view, err := s.catalog.GetAllocatedCourses(ctx, studentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Register: %w", domain.ErrNothingToRegister)
		}
		return nil, fmt.Errorf("Register: %w", err)
	}
	if view.DeadlinePassed {
		return nil, fmt.Errorf("Register: %w", domain.ErrDeadlinePassed)
	}
	if view.AnyRegistered() {
		// A flipped allocation backed by a live transaction means a
		// concurrent attempt won between our lookup and the catalog read;
		// replay it. With no such row the allocation state has drifted.
		if winner, lookupErr := s.transactions.GetLive(ctx, studentID, semester.ID); lookupErr == nil {
			return s.replay(ctx, winner)
		}
		return nil, fmt.Errorf("Register: %w", domain.ErrAlreadyRegistered)
	}

	txn := &domain.RegistrationTransaction{
		ID:             uuid.New(),
		IdempotencyKey: DeriveIdempotencyKey(studentID, semester.ID),
		StudentID:      studentID,
		SemesterID:     semester.ID,
		AllocationIDs:  view.PendingAllocationIDs(),
		TotalAmount:    view.TotalAmount,
		Currency:       view.Currency,
		CourseCount:    view.CourseCount,
		Status:         domain.TransactionStatusPending,
		CreatedAt:      s.now(),
	}

	if err := s.transactions.CreatePending(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransaction) {
			// Lost the race to a concurrent attempt for the same pair.
			winner, lookupErr := s.transactions.GetLive(ctx, studentID, semester.ID)
			if lookupErr != nil {
				return nil, fmt.Errorf("Register: %w", domain.ErrRegistrationInFlight)
			}
			return s.replay(ctx, winner)
		}
		return nil, fmt.Errorf("Register: %w", err)
	}

	receipt, err := s.settle(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	log.Info("registration settled",
		"transaction_id", txn.ID,
		"student_id", studentID,
		"semester_id", semester.ID,
		"course_count", receipt.RegisteredCourseCount,
		"amount_debited", receipt.AmountDebited,
		"new_balance", receipt.NewBalance,
	)

	return receipt, nil
}

// replay handles a live transaction found during the idempotency check:
// a committed row yields its original receipt, a pending row means a
// concurrent attempt is still in flight.
func (s *Service) replay(ctx context.Context, t *domain.RegistrationTransaction) (*domain.Receipt, error) {
	if t.Status == domain.TransactionStatusPending {
		return nil, fmt.Errorf("replay: %w", domain.ErrRegistrationInFlight)
	}

	receipt, err := GenerateReceipt(t)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	s.metrics.RegistrationsReplayed.Inc()
	logging.FromContext(ctx).Info("registration receipt replayed",
		"transaction_id", t.ID,
		"student_id", t.StudentID,
	)
	return receipt, nil
}

// settle drives the debit-and-enroll commit within the configured budget,
// retrying bounded times on optimistic lock conflicts. Any terminal
// failure marks the transaction row failed before returning; the row
// never blocks a fresh attempt.
func (s *Service) settle(ctx context.Context, txn *domain.RegistrationTransaction) (*domain.Receipt, error) {
	start := time.Now()
	commitCtx, cancel := context.WithTimeout(ctx, s.commitBudget)
	defer cancel()

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.attemptCommit(commitCtx, txn)
		switch {
		case err == nil:
			s.metrics.ObserveCommit(time.Since(start).Seconds())
			return GenerateReceipt(txn)

		case errors.Is(err, domain.ErrVersionConflict):
			// Another writer touched the wallet between our read and
			// our conditional update. Conflicts are rare for a single
			// student key, so retry immediately without backoff.
			s.metrics.DebitRetries.Inc()
			continue

		case errors.Is(err, domain.ErrInsufficientBalance):
			s.fail(ctx, txn.ID, domain.FailureReasonInsufficientBalance)
			return nil, fmt.Errorf("settle: %w", domain.ErrInsufficientBalance)

		case errors.Is(err, domain.ErrAlreadyRegistered):
			s.fail(ctx, txn.ID, domain.FailureReasonAllocationDrift)
			return nil, fmt.Errorf("settle: %w", domain.ErrAlreadyRegistered)

		case errors.Is(err, context.DeadlineExceeded) && commitCtx.Err() != nil:
			s.fail(ctx, txn.ID, domain.FailureReasonTimeout)
			return nil, fmt.Errorf("settle: %w", domain.ErrTimeout)

		default:
			s.fail(ctx, txn.ID, domain.FailureReasonInternal)
			return nil, fmt.Errorf("settle: %w", err)
		}
	}

	s.fail(ctx, txn.ID, domain.FailureReasonVersionConflict)
	return nil, fmt.Errorf("settle: retries exhausted: %w", domain.ErrVersionConflict)
}

// attemptCommit is one pass of steps debit, enroll, commit inside a
// single database transaction. On success it fills the commit fields of
// txn in place.
func (s *Service) attemptCommit(ctx context.Context, txn *domain.RegistrationTransaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("attemptCommit: begin tx: %w", err)
	}
	defer tx.Rollback()

	wallet, err := s.wallets.GetByStudentTx(ctx, tx, txn.StudentID)
	if err != nil {
		return fmt.Errorf("attemptCommit: %w", err)
	}

	if wallet.Balance < txn.TotalAmount {
		return fmt.Errorf("attemptCommit: balance %d below total %d: %w",
			wallet.Balance, txn.TotalAmount, domain.ErrInsufficientBalance)
	}

	if err := s.wallets.Debit(ctx, tx, txn.StudentID, txn.TotalAmount, wallet.Version); err != nil {
		return fmt.Errorf("attemptCommit: %w", err)
	}

	committedAt := s.now()
	flipped, err := s.allocations.MarkRegistered(ctx, tx, txn.AllocationIDs, committedAt)
	if err != nil {
		return fmt.Errorf("attemptCommit: %w", err)
	}
	if flipped != int64(len(txn.AllocationIDs)) {
		// Some allocation left pending state since the precondition
		// read. Roll everything back rather than enroll a subset.
		return fmt.Errorf("attemptCommit: flipped %d of %d allocations: %w",
			flipped, len(txn.AllocationIDs), domain.ErrAlreadyRegistered)
	}

	balanceAfter := wallet.Balance - txn.TotalAmount
	if err := s.transactions.MarkCommitted(ctx, tx, txn.ID, balanceAfter, committedAt); err != nil {
		return fmt.Errorf("attemptCommit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("attemptCommit: commit: %w", err)
	}

	txn.Status = domain.TransactionStatusCommitted
	txn.BalanceAfter = &balanceAfter
	txn.CommittedAt = &committedAt
	return nil
}

// fail records the terminal state of an attempt. It must survive an
// expired commit budget, so it detaches from the caller's deadline.
func (s *Service) fail(ctx context.Context, id uuid.UUID, reason string) {
	detached := context.WithoutCancel(ctx)
	if err := s.transactions.MarkFailed(detached, id, reason); err != nil {
		logging.FromContext(ctx).Error("failed to mark transaction failed",
			"transaction_id", id, "reason", reason, "error", err)
	}
	s.metrics.ObserveFailure(reason)
}
