package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/domain"
)

const walletColumns = `student_id, balance, currency, version, created_at, updated_at`

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByStudent(ctx context.Context, studentID uuid.UUID) (*domain.WalletAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallet_accounts WHERE student_id = $1`, studentID,
	)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByStudent: %w", domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("GetByStudent: %w", err)
	}
	return w, nil
}

// GetByStudentTx re-reads the wallet inside the settlement transaction.
// No row lock is taken; the version column arbitrates concurrent writers.
func (r *WalletRepository) GetByStudentTx(ctx context.Context, tx *sql.Tx, studentID uuid.UUID) (*domain.WalletAccount, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallet_accounts WHERE student_id = $1`, studentID,
	)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByStudentTx: %w", domain.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("GetByStudentTx: %w", err)
	}
	return w, nil
}

// Debit subtracts amount conditionally on the version read earlier being
// current. Zero rows affected means another writer got there first. The
// schema-level balance >= 0 check closes the window between the balance
// check and the commit; it surfaces as ErrInsufficientBalance.
func (r *WalletRepository) Debit(ctx context.Context, tx *sql.Tx, studentID uuid.UUID, amount int64, expectedVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE wallet_accounts
		SET balance = balance - $1, version = version + 1, updated_at = now()
		WHERE student_id = $2 AND version = $3`,
		amount, studentID, expectedVersion,
	)
	if err != nil {
		if isPGError(err, pgCheckViolation) {
			return fmt.Errorf("Debit: %w", domain.ErrInsufficientBalance)
		}
		return fmt.Errorf("Debit: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Debit: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Debit: %w", domain.ErrVersionConflict)
	}
	return nil
}

// Credit tops up a wallet. Not part of the settlement path; used by the
// funding collaborator and by fixtures.
func (r *WalletRepository) Credit(ctx context.Context, studentID uuid.UUID, amount int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wallet_accounts
		SET balance = balance + $1, version = version + 1, updated_at = now()
		WHERE student_id = $2`,
		amount, studentID,
	)
	if err != nil {
		return fmt.Errorf("Credit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Credit: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Credit: %w", domain.ErrWalletNotFound)
	}
	return nil
}

func scanWallet(s scanner) (*domain.WalletAccount, error) {
	var w domain.WalletAccount
	err := s.Scan(
		&w.StudentID, &w.Balance, &w.Currency, &w.Version,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
