package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/campuswallet/registration/internal/domain"
)

const transactionColumns = `id, idempotency_key, student_id, semester_id, allocation_ids,
	total_amount, currency, course_count, status, failure_reason, balance_after,
	created_at, committed_at`

// ErrDuplicateTransaction reports that the partial unique index on
// (student_id, semester_id) among non-failed rows rejected an insert: a
// concurrent attempt created its pending or committed row first.
var ErrDuplicateTransaction = errors.New("duplicate registration transaction")

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreatePending writes the durable marker that a settlement attempt is in
// progress, before the wallet is touched.
func (r *TransactionRepository) CreatePending(ctx context.Context, t *domain.RegistrationTransaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registration_transactions (
			id, idempotency_key, student_id, semester_id, allocation_ids,
			total_amount, currency, course_count, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.IdempotencyKey, t.StudentID, t.SemesterID, pq.Array(uuidStrings(t.AllocationIDs)),
		t.TotalAmount, t.Currency, t.CourseCount, domain.TransactionStatusPending, t.CreatedAt,
	)
	if err != nil {
		if isPGError(err, pgUniqueViolation) {
			return fmt.Errorf("CreatePending: %w", ErrDuplicateTransaction)
		}
		return fmt.Errorf("CreatePending: %w", err)
	}
	return nil
}

// GetLive returns the pending or committed transaction for the pair, if
// any. Failed rows are invisible here: they never block a fresh attempt.
func (r *TransactionRepository) GetLive(ctx context.Context, studentID, semesterID uuid.UUID) (*domain.RegistrationTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM registration_transactions
		WHERE student_id = $1 AND semester_id = $2 AND status <> 'failed'`,
		studentID, semesterID,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetLive: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetLive: %w", err)
	}
	return t, nil
}

// MarkCommitted runs inside the settlement transaction so the status
// flip, the debit and the allocation updates persist together or not at
// all. balance_after is recorded so receipts can be regenerated
// byte-identically for retried requests.
func (r *TransactionRepository) MarkCommitted(ctx context.Context, tx *sql.Tx, id uuid.UUID, balanceAfter int64, committedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE registration_transactions
		SET status = 'committed', balance_after = $1, committed_at = $2
		WHERE id = $3 AND status = 'pending'`,
		balanceAfter, committedAt, id,
	)
	if err != nil {
		return fmt.Errorf("MarkCommitted: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkCommitted: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkCommitted: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkFailed terminates an attempt outside any settlement transaction.
// The row is retained for audit.
func (r *TransactionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registration_transactions
		SET status = 'failed', failure_reason = $1
		WHERE id = $2 AND status = 'pending'`,
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("MarkFailed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkFailed: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkFailed: %w", domain.ErrNotFound)
	}
	return nil
}

// GetStalePending lists pending rows older than the cutoff for the
// startup recovery sweep.
func (r *TransactionRepository) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.RegistrationTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM registration_transactions
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("GetStalePending: %w", err)
	}
	defer rows.Close()

	var transactions []domain.RegistrationTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStalePending: scan: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStalePending: rows: %w", err)
	}
	return transactions, nil
}

func scanTransaction(s scanner) (*domain.RegistrationTransaction, error) {
	var t domain.RegistrationTransaction
	var rawIDs []string

	err := s.Scan(
		&t.ID, &t.IdempotencyKey, &t.StudentID, &t.SemesterID, pq.Array(&rawIDs),
		&t.TotalAmount, &t.Currency, &t.CourseCount, &t.Status, &t.FailureReason,
		&t.BalanceAfter, &t.CreatedAt, &t.CommittedAt,
	)
	if err != nil {
		return nil, err
	}

	t.AllocationIDs = make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse allocation id %q: %w", raw, err)
		}
		t.AllocationIDs = append(t.AllocationIDs, id)
	}

	// lib/pq returns fixed-offset zones; keep all times in UTC so a
	// replayed receipt compares equal to the original.
	t.CreatedAt = t.CreatedAt.UTC()
	if t.CommittedAt != nil {
		utc := t.CommittedAt.UTC()
		t.CommittedAt = &utc
	}

	return &t, nil
}
