package payment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("payment not found")
	ErrFreeCourse        = errors.New("course is free; no payment required")
	ErrCourseNotOpen     = errors.New("course is not open for purchase")
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		// FilterPayments applies AND operation on available QueryFilter
		// fields; joins user and course names for admin review.
		FilterPayments(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Payment, error)
		SetPaymentStatus(ctx context.Context, id string, status Status, reference string) (Payment, error)
		HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error)
	}

	ServiceInterface interface {
		// Checkout opens a pending payment for a priced course.
		Checkout(ctx context.Context, student user.User, courseID string) (Payment, error)
		GetByID(ctx context.Context, id string) (Payment, error)
		Query(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Payment, error)
		// SetStatus applies an admin status override, validated against the
		// transition table.
		SetStatus(ctx context.Context, actor user.User, id string, us UpdateStatus) (Payment, error)
		HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error)
	}

	service struct {
		repo      Repository
		courseSvc course.ServiceInterface
		mailSvc   core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, courseSvc course.ServiceInterface, mailSvc core.EmailService) *service {
	return &service{
		repo:      repo,
		courseSvc: courseSvc,
		mailSvc:   mailSvc,
	}
}

func (svc *service) Checkout(ctx context.Context, student user.User, courseID string) (Payment, error) {
	if !student.IsStudent() {
		return Payment{}, core.ErrPermissionDenied
	}
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return Payment{}, err
	}
	if crs.IsFree {
		return Payment{}, ErrFreeCourse
	}
	if !crs.IsPublished() {
		return Payment{}, ErrCourseNotOpen
	}

	now := time.Now().UTC()
	return svc.repo.CreatePayment(ctx, Payment{
		UserID:      student.ID,
		CourseID:    courseID,
		AmountCents: crs.PriceCents,
		Currency:    "USD",
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) GetByID(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Payment, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterPayments(ctx, *filter, orderings...)
}

func (svc *service) SetStatus(ctx context.Context, actor user.User, id string, us UpdateStatus) (Payment, error) {
	if !actor.IsAdmin() {
		return Payment{}, core.ErrPermissionDenied
	}
	pmt, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !pmt.Status.CanTransitionTo(us.Status) {
		return Payment{}, core.NewValidationError(ErrInvalidTransition, core.FieldError{
			Field: "status",
			Error: fmt.Sprintf("cannot move payment from %q to %q", pmt.Status, us.Status),
		})
	}

	pmt, err = svc.repo.SetPaymentStatus(ctx, id, us.Status, us.Reference)
	if err != nil {
		return Payment{}, err
	}
	if pmt.Status == StatusCompleted {
		svc.sendReceipt(ctx, pmt)
	}
	return pmt, nil
}

func (svc *service) HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error) {
	return svc.repo.HasCompletedPayment(ctx, userID, courseID)
}

func (svc *service) sendReceipt(ctx context.Context, pmt Payment) {
	if pmt.UserEmail == "" {
		return
	}
	crs, err := svc.courseSvc.GetByID(ctx, pmt.CourseID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: pmt.UserName, Address: pmt.UserEmail}},
		Subject:      "Payment Receipt",
		TemplateName: "receipt",
		TemplateData: struct {
			Payment Payment
			Course  course.Course
		}{pmt, crs},
	})
}
