package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/domain"
)

func SeedSemester(t *testing.T, db *sql.DB, deadline time.Time, status domain.SemesterStatus) *domain.Semester {
	t.Helper()

	s := &domain.Semester{
		ID:                   uuid.New(),
		AcademicYear:         "2025/2026",
		Term:                 "First Semester",
		RegistrationDeadline: deadline,
		Status:               status,
		CreatedAt:            time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO semesters (id, academic_year, term, registration_deadline, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.AcademicYear, s.Term, s.RegistrationDeadline, s.Status, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed semester: %v", err)
	}
	return s
}

func SeedWallet(t *testing.T, db *sql.DB, studentID uuid.UUID, balance int64) *domain.WalletAccount {
	t.Helper()

	w := &domain.WalletAccount{
		StudentID: studentID,
		Balance:   balance,
		Currency:  domain.CurrencyNGN,
		Version:   0,
	}

	_, err := db.Exec(
		`INSERT INTO wallet_accounts (student_id, balance, currency, version)
		 VALUES ($1, $2, $3, $4)`,
		w.StudentID, w.Balance, w.Currency, w.Version,
	)
	if err != nil {
		t.Fatalf("seed wallet %s: %v", studentID, err)
	}
	return w
}

func SeedAllocation(t *testing.T, db *sql.DB, studentID, semesterID uuid.UUID, courseCode, title string, unit int, price int64) *domain.Allocation {
	t.Helper()

	a := &domain.Allocation{
		ID:          uuid.New(),
		StudentID:   studentID,
		SemesterID:  semesterID,
		CourseID:    uuid.New(),
		CourseCode:  courseCode,
		CourseTitle: title,
		CourseUnit:  unit,
		Price:       price,
		Currency:    domain.CurrencyNGN,
		State:       domain.AllocationStatePending,
		AllocatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO course_allocations (
			id, student_id, semester_id, course_id, course_code, course_title,
			course_unit, price, currency, state, allocated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.StudentID, a.SemesterID, a.CourseID, a.CourseCode, a.CourseTitle,
		a.CourseUnit, a.Price, a.Currency, a.State, a.AllocatedAt,
	)
	if err != nil {
		t.Fatalf("seed allocation %s: %v", courseCode, err)
	}
	return a
}

func GetWalletBalance(t *testing.T, db *sql.DB, studentID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM wallet_accounts WHERE student_id = $1`, studentID).Scan(&balance)
	if err != nil {
		t.Fatalf("get wallet balance %s: %v", studentID, err)
	}
	return balance
}

func GetAllocationState(t *testing.T, db *sql.DB, allocationID uuid.UUID) domain.AllocationState {
	t.Helper()

	var state domain.AllocationState
	err := db.QueryRow(`SELECT state FROM course_allocations WHERE id = $1`, allocationID).Scan(&state)
	if err != nil {
		t.Fatalf("get allocation state %s: %v", allocationID, err)
	}
	return state
}

func CountTransactions(t *testing.T, db *sql.DB, studentID, semesterID uuid.UUID, status domain.TransactionStatus) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM registration_transactions
		 WHERE student_id = $1 AND semester_id = $2 AND status = $3`,
		studentID, semesterID, status,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}
