package domain

import (
	"time"

	"github.com/google/uuid"
)

type SemesterStatus string

const (
	SemesterStatusActive SemesterStatus = "active"
	SemesterStatusClosed SemesterStatus = "closed"
)

// Semester is read-only to this engine; the semester registry owns it.
type Semester struct {
	ID                   uuid.UUID
	AcademicYear         string
	Term                 string
	RegistrationDeadline time.Time
	Status               SemesterStatus
	CreatedAt            time.Time
}

func (s *Semester) DeadlinePassed(now time.Time) bool {
	return now.After(s.RegistrationDeadline)
}
