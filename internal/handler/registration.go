package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/auth"
	"github.com/campuswallet/registration/internal/catalog"
	"github.com/campuswallet/registration/internal/domain"
	"github.com/campuswallet/registration/internal/logging"
)

type catalogReader interface {
	GetAllocatedCourses(ctx context.Context, studentID uuid.UUID) (*catalog.AllocatedCoursesView, error)
}

type registrationService interface {
	Register(ctx context.Context, studentID uuid.UUID) (*domain.Receipt, error)
}

type RegistrationHandler struct {
	catalog      catalogReader
	registration registrationService
}

func NewRegistrationHandler(catalog catalogReader, registration registrationService) *RegistrationHandler {
	return &RegistrationHandler{catalog: catalog, registration: registration}
}

type semesterResponse struct {
	AcademicYear         string    `json:"academic_year"`
	Semester             string    `json:"semester"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	DeadlinePassed       bool      `json:"deadline_passed"`
}

type courseResponse struct {
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	CourseUnit int    `json:"course_unit"`
}

type allocatedCourseResponse struct {
	AllocationID uuid.UUID      `json:"allocation_id"`
	Course       courseResponse `json:"course"`
	Price        int64          `json:"price"`
	AllocatedAt  time.Time      `json:"allocated_at"`
}

type allocatedCoursesResponse struct {
	Semester         *semesterResponse         `json:"semester"`
	AllocatedCourses []allocatedCourseResponse `json:"allocated_courses"`
	TotalAmount      int64                     `json:"total_amount"`
	CourseCount      int                       `json:"course_count"`
	CanRegister      bool                      `json:"can_register"`
}

// GetAllocatedCourses serves the registration preview. A student with no
// allocation gets the empty payload, not an error: the UI renders it as
// "nothing to register yet".
func (h *RegistrationHandler) GetAllocatedCourses(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.StudentIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	view, err := h.catalog.GetAllocatedCourses(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrNoActiveSemester) {
			RespondSuccess(w, http.StatusOK, allocatedCoursesResponse{
				AllocatedCourses: []allocatedCourseResponse{},
			})
			return
		}
		log := logging.FromContext(r.Context())
		log.Error("allocated courses lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	resp := allocatedCoursesResponse{
		Semester: &semesterResponse{
			AcademicYear:         view.Semester.AcademicYear,
			Semester:             view.Semester.Term,
			RegistrationDeadline: view.Semester.RegistrationDeadline,
			DeadlinePassed:       view.DeadlinePassed,
		},
		AllocatedCourses: make([]allocatedCourseResponse, 0, len(view.Allocations)),
		TotalAmount:      view.TotalAmount,
		CourseCount:      view.CourseCount,
		CanRegister:      view.CanRegister,
	}
	for _, a := range view.Allocations {
		resp.AllocatedCourses = append(resp.AllocatedCourses, allocatedCourseResponse{
			AllocationID: a.ID,
			Course: courseResponse{
				CourseCode: a.CourseCode,
				Title:      a.CourseTitle,
				CourseUnit: a.CourseUnit,
			},
			Price:       a.Price,
			AllocatedAt: a.AllocatedAt,
		})
	}

	RespondSuccess(w, http.StatusOK, resp)
}

type paymentResponse struct {
	AmountDebited int64  `json:"amount_debited"`
	AmountDisplay string `json:"amount_display"`
	Currency      string `json:"currency"`
	NewBalance    int64  `json:"new_balance"`
}

type receiptResponse struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	RegisteredCount int             `json:"registered_count"`
	Payment         paymentResponse `json:"payment"`
	IssuedAt        time.Time       `json:"issued_at"`
}

// RegisterAllocatedCourses settles the full allocation. The idempotency
// key is derived server-side from the authenticated student and the
// active semester, so no client header is needed and retries are safe.
func (h *RegistrationHandler) RegisterAllocatedCourses(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.StudentIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	receipt, err := h.registration.Register(r.Context(), studentID)
	if err != nil {
		log := logging.FromContext(r.Context())
		log.Warn("registration failed", "student_id", studentID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, receiptResponse{
		TransactionID:   receipt.TransactionID,
		RegisteredCount: receipt.RegisteredCourseCount,
		Payment: paymentResponse{
			AmountDebited: receipt.AmountDebited,
			AmountDisplay: receipt.AmountDisplay,
			Currency:      string(receipt.Currency),
			NewBalance:    receipt.NewBalance,
		},
		IssuedAt: receipt.IssuedAt,
	})
}
