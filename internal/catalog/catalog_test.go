package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswallet/registration/internal/domain"
)

type stubSemesters struct {
	semester *domain.Semester
	err      error
}

func (s stubSemesters) GetActive(context.Context) (*domain.Semester, error) {
	return s.semester, s.err
}

type stubAllocations struct {
	allocations []domain.Allocation
	err         error
}

func (s stubAllocations) ListByStudentAndSemester(context.Context, uuid.UUID, uuid.UUID) ([]domain.Allocation, error) {
	return s.allocations, s.err
}

var fixedNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func activeSemester(deadline time.Time) *domain.Semester {
	return &domain.Semester{
		ID:                   uuid.New(),
		AcademicYear:         "2025/2026",
		Term:                 "First Semester",
		RegistrationDeadline: deadline,
		Status:               domain.SemesterStatusActive,
	}
}

func allocation(price int64, state domain.AllocationState) domain.Allocation {
	return domain.Allocation{
		ID:       uuid.New(),
		CourseID: uuid.New(),
		Price:    price,
		Currency: domain.CurrencyNGN,
		State:    state,
	}
}

func TestGetAllocatedCourses_Totals(t *testing.T) {
	semester := activeSemester(fixedNow.Add(48 * time.Hour))
	c := NewWithClock(
		stubSemesters{semester: semester},
		stubAllocations{allocations: []domain.Allocation{
			allocation(20000, domain.AllocationStatePending),
			allocation(15000, domain.AllocationStatePending),
		}},
		func() time.Time { return fixedNow },
	)

	view, err := c.GetAllocatedCourses(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, int64(35000), view.TotalAmount)
	assert.Equal(t, 2, view.CourseCount)
	assert.Equal(t, domain.CurrencyNGN, view.Currency)
	assert.False(t, view.DeadlinePassed)
	assert.True(t, view.CanRegister)
	assert.False(t, view.AnyRegistered())
	assert.Len(t, view.PendingAllocationIDs(), 2)
}

func TestGetAllocatedCourses_DeadlinePassed(t *testing.T) {
	semester := activeSemester(fixedNow.Add(-time.Hour))
	c := NewWithClock(
		stubSemesters{semester: semester},
		stubAllocations{allocations: []domain.Allocation{
			allocation(20000, domain.AllocationStatePending),
		}},
		func() time.Time { return fixedNow },
	)

	view, err := c.GetAllocatedCourses(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.True(t, view.DeadlinePassed)
	assert.False(t, view.CanRegister)
}

func TestGetAllocatedCourses_RegisteredBlocksCanRegister(t *testing.T) {
	semester := activeSemester(fixedNow.Add(48 * time.Hour))
	c := NewWithClock(
		stubSemesters{semester: semester},
		stubAllocations{allocations: []domain.Allocation{
			allocation(20000, domain.AllocationStatePending),
			allocation(15000, domain.AllocationStateRegistered),
		}},
		func() time.Time { return fixedNow },
	)

	view, err := c.GetAllocatedCourses(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.False(t, view.CanRegister)
	assert.True(t, view.AnyRegistered())
	assert.Len(t, view.PendingAllocationIDs(), 1)
}

func TestGetAllocatedCourses_NoAllocations(t *testing.T) {
	semester := activeSemester(fixedNow.Add(48 * time.Hour))
	c := NewWithClock(
		stubSemesters{semester: semester},
		stubAllocations{},
		func() time.Time { return fixedNow },
	)

	_, err := c.GetAllocatedCourses(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAllocatedCourses_NoActiveSemester(t *testing.T) {
	c := NewWithClock(
		stubSemesters{err: domain.ErrNoActiveSemester},
		stubAllocations{},
		func() time.Time { return fixedNow },
	)

	_, err := c.GetAllocatedCourses(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNoActiveSemester)
}
