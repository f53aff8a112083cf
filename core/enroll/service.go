package enroll

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrCourseNotOpen   = errors.New("course is not open for enrollment")
	ErrPaymentRequired = errors.New("a completed payment is required for this course")
)

type (
	Repository interface {
		// UpsertEnrollment inserts the enrollment or, when one already exists
		// for (course_id, student_id), returns the existing row untouched.
		// It also refreshes the course's enrollment_count.
		UpsertEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error)
		ListStudentEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
		ListCourseEnrollments(ctx context.Context, courseID string) ([]Enrollment, error)
		// RefreshEnrollmentProgress recomputes ProgressPct from completed
		// lesson progress over the course's total lessons, setting
		// CompletedAt when it reaches 100.
		RefreshEnrollmentProgress(ctx context.Context, courseID, studentID string) (Enrollment, error)
	}

	// PaymentChecker reports whether a student has paid for a course.
	// Implemented by the payment service.
	PaymentChecker interface {
		HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error)
	}

	ServiceInterface interface {
		Enroll(ctx context.Context, student user.User, courseID string) (Enrollment, error)
		IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
		Get(ctx context.Context, courseID, studentID string) (Enrollment, error)
		ListForStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		ListForCourse(ctx context.Context, actor user.User, courseID string) ([]Enrollment, error)
	}

	service struct {
		repo      Repository
		courseSvc course.ServiceInterface
		payments  PaymentChecker
		mailSvc   core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, courseSvc course.ServiceInterface, payments PaymentChecker, mailSvc core.EmailService) *service {
	return &service{
		repo:      repo,
		courseSvc: courseSvc,
		payments:  payments,
		mailSvc:   mailSvc,
	}
}

func (svc *service) Enroll(ctx context.Context, student user.User, courseID string) (Enrollment, error) {
	if !student.IsStudent() {
		return Enrollment{}, core.ErrPermissionDenied
	}
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if !crs.IsPublished() {
		return Enrollment{}, ErrCourseNotOpen
	}

	if !crs.IsFree {
		paid, err := svc.payments.HasCompletedPayment(ctx, student.ID, courseID)
		if err != nil {
			return Enrollment{}, errors.Wrap(err, "checking payment")
		}
		if !paid {
			return Enrollment{}, ErrPaymentRequired
		}
	}

	// idempotent: a second enroll returns the existing row
	existing, err := svc.repo.GetEnrollment(ctx, courseID, student.ID)
	if err == nil {
		return existing, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Enrollment{}, err
	}

	enr, err := svc.repo.UpsertEnrollment(ctx, Enrollment{
		CourseID:  courseID,
		StudentID: student.ID,
	})
	if err != nil {
		return Enrollment{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      "Enrollment Confirmed",
		TemplateName: "enrollment",
		TemplateData: struct {
			Student user.User
			Course  course.Course
		}{student, crs},
	})
	return enr, nil
}

func (svc *service) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	if _, err := svc.repo.GetEnrollment(ctx, courseID, studentID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *service) Get(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, courseID, studentID)
}

func (svc *service) ListForStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.ListStudentEnrollments(ctx, studentID)
}

func (svc *service) ListForCourse(ctx context.Context, actor user.User, courseID string) ([]Enrollment, error) {
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !svc.courseSvc.CanEdit(actor, crs) {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.ListCourseEnrollments(ctx, courseID)
}
