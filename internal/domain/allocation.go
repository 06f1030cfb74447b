package domain

import (
	"time"

	"github.com/google/uuid"
)

type Currency string

const CurrencyNGN Currency = "NGN"

type AllocationState string

const (
	AllocationStatePending    AllocationState = "pending"
	AllocationStateRegistered AllocationState = "registered"
)

// Allocation is one course assigned to a student for a semester by the
// allocation process. Course fields are denormalized from the catalog
// service at allocation time; this engine never writes them. The only
// mutation this engine performs is the pending -> registered flip.
type Allocation struct {
	ID           uuid.UUID
	StudentID    uuid.UUID
	SemesterID   uuid.UUID
	CourseID     uuid.UUID
	CourseCode   string
	CourseTitle  string
	CourseUnit   int
	Price        int64
	Currency     Currency
	State        AllocationState
	AllocatedAt  time.Time
	RegisteredAt *time.Time
}
