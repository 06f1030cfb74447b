// Package catalog is the read-only view of a student's semester
// allocation: which courses, at what prices, and whether the
// registration window is still open. It never writes.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/domain"
)

type semesterRepo interface {
	GetActive(ctx context.Context) (*domain.Semester, error)
}

type allocationRepo interface {
	ListByStudentAndSemester(ctx context.Context, studentID, semesterID uuid.UUID) ([]domain.Allocation, error)
}

type Catalog struct {
	semesters   semesterRepo
	allocations allocationRepo
	now         func() time.Time
}

func New(semesters semesterRepo, allocations allocationRepo) *Catalog {
	return &Catalog{
		semesters:   semesters,
		allocations: allocations,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewWithClock exists for tests that need a fixed notion of now.
func NewWithClock(semesters semesterRepo, allocations allocationRepo, now func() time.Time) *Catalog {
	c := New(semesters, allocations)
	c.now = now
	return c
}

// AllocatedCoursesView is the precomputed read model served to the UI
// layer and consumed by the settlement coordinator's precondition step.
type AllocatedCoursesView struct {
	Semester       *domain.Semester
	Allocations    []domain.Allocation
	TotalAmount    int64
	CourseCount    int
	Currency       domain.Currency
	DeadlinePassed bool
	CanRegister    bool
}

// GetAllocatedCourses resolves the active semester and the student's
// allocations in it. Returns domain.ErrNotFound when the student has no
// allocations; callers decide whether that is an error (the coordinator)
// or an empty display state (the HTTP layer).
func (c *Catalog) GetAllocatedCourses(ctx context.Context, studentID uuid.UUID) (*AllocatedCoursesView, error) {
	semester, err := c.semesters.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAllocatedCourses: %w", err)
	}

	allocations, err := c.allocations.ListByStudentAndSemester(ctx, studentID, semester.ID)
	if err != nil {
		return nil, fmt.Errorf("GetAllocatedCourses: %w", err)
	}
	if len(allocations) == 0 {
		return nil, fmt.Errorf("GetAllocatedCourses: %w", domain.ErrNotFound)
	}

	view := &AllocatedCoursesView{
		Semester:       semester,
		Allocations:    allocations,
		CourseCount:    len(allocations),
		Currency:       allocations[0].Currency,
		DeadlinePassed: semester.DeadlinePassed(c.now()),
	}

	allPending := true
	for _, a := range allocations {
		view.TotalAmount += a.Price
		if a.State != domain.AllocationStatePending {
			allPending = false
		}
	}
	view.CanRegister = !view.DeadlinePassed && allPending

	return view, nil
}

// PendingAllocationIDs returns the ids of allocations still pending, the
// set the coordinator records on the transaction row. Order is stable
// (the repository sorts) so the derived total and id list are
// deterministic for a given allocation state.
func (v *AllocatedCoursesView) PendingAllocationIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(v.Allocations))
	for _, a := range v.Allocations {
		if a.State == domain.AllocationStatePending {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// AnyRegistered reports whether some allocation was already flipped,
// which the coordinator treats as drift from a prior partial state.
func (v *AllocatedCoursesView) AnyRegistered() bool {
	for _, a := range v.Allocations {
		if a.State == domain.AllocationStateRegistered {
			return true
		}
	}
	return false
}
