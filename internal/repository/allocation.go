package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/campuswallet/registration/internal/domain"
)

const allocationColumns = `id, student_id, semester_id, course_id, course_code,
	course_title, course_unit, price, currency, state, allocated_at, registered_at`

type AllocationRepository struct {
	db *sql.DB
}

func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) ListByStudentAndSemester(ctx context.Context, studentID, semesterID uuid.UUID) ([]domain.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM course_allocations
		WHERE student_id = $1 AND semester_id = $2 ORDER BY allocated_at, course_code`,
		studentID, semesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByStudentAndSemester: %w", err)
	}
	defer rows.Close()

	var allocations []domain.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByStudentAndSemester: scan: %w", err)
		}
		allocations = append(allocations, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByStudentAndSemester: rows: %w", err)
	}
	return allocations, nil
}

// MarkRegistered flips the given allocations from pending to registered
// inside the settlement transaction. The state predicate makes the flip
// conditional: a count short of len(ids) means some allocation was no
// longer pending, and the caller must roll back.
func (r *AllocationRepository) MarkRegistered(ctx context.Context, tx *sql.Tx, ids []uuid.UUID, registeredAt time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE course_allocations
		SET state = 'registered', registered_at = $1
		WHERE id = ANY($2) AND state = 'pending'`,
		registeredAt, pq.Array(uuidStrings(ids)),
	)
	if err != nil {
		return 0, fmt.Errorf("MarkRegistered: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("MarkRegistered: rows affected: %w", err)
	}
	return rows, nil
}

func scanAllocation(s scanner) (*domain.Allocation, error) {
	var a domain.Allocation
	err := s.Scan(
		&a.ID, &a.StudentID, &a.SemesterID, &a.CourseID, &a.CourseCode,
		&a.CourseTitle, &a.CourseUnit, &a.Price, &a.Currency, &a.State,
		&a.AllocatedAt, &a.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
