package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuswallet/registration/internal/domain"
)

const semesterColumns = `id, academic_year, term, registration_deadline, status, created_at`

type SemesterRepository struct {
	db *sql.DB
}

func NewSemesterRepository(db *sql.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

func (r *SemesterRepository) GetActive(ctx context.Context) (*domain.Semester, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+semesterColumns+` FROM semesters WHERE status = 'active'`,
	)
	s, err := scanSemester(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetActive: %w", domain.ErrNoActiveSemester)
		}
		return nil, fmt.Errorf("GetActive: %w", err)
	}
	return s, nil
}

func scanSemester(s scanner) (*domain.Semester, error) {
	var sem domain.Semester
	err := s.Scan(
		&sem.ID, &sem.AcademicYear, &sem.Term,
		&sem.RegistrationDeadline, &sem.Status, &sem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sem, nil
}
