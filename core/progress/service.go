package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("lesson progress not found")
	ErrNotEnrolled = errors.New("student is not enrolled in this course")
)

type (
	Repository interface {
		GetLessonProgress(ctx context.Context, lessonID, studentID string) (LessonProgress, error)
		// UpsertLessonProgress inserts or updates the row keyed on
		// (lesson_id, student_id). Watch counters only move forward and a
		// completed row is never un-completed: CompletedAt keeps its first
		// non-nil value no matter how often completion is re-reported.
		UpsertLessonProgress(ctx context.Context, lp LessonProgress) (LessonProgress, error)
		// ListCourseProgress returns, in one query, the progress rows a
		// student has for all lessons of a course.
		ListCourseProgress(ctx context.Context, courseID, studentID string) ([]LessonProgress, error)
	}

	ServiceInterface interface {
		// Get returns the "not started" zero value (nil error) when no row exists.
		Get(ctx context.Context, lessonID, studentID string) (LessonProgress, error)
		Record(ctx context.Context, student user.User, lessonID string, in RecordInput) (LessonProgress, error)
		// Complete marks the lesson watched to the end and refreshes the
		// enrollment's course progress percentage. Idempotent.
		Complete(ctx context.Context, student user.User, lessonID string) (LessonProgress, error)
		ListForCourse(ctx context.Context, courseID, studentID string) ([]LessonProgress, error)
	}

	service struct {
		repo       Repository
		courseSvc  course.ServiceInterface
		enrollRepo enroll.Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, courseSvc course.ServiceInterface, enrollRepo enroll.Repository) *service {
	return &service{
		repo:       repo,
		courseSvc:  courseSvc,
		enrollRepo: enrollRepo,
	}
}

func (svc *service) Get(ctx context.Context, lessonID, studentID string) (LessonProgress, error) {
	lp, err := svc.repo.GetLessonProgress(ctx, lessonID, studentID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			// absent row is the valid "not started" state
			return LessonProgress{LessonID: lessonID, StudentID: studentID}, nil
		}
		return LessonProgress{}, err
	}
	return lp, nil
}

// gate checks the invariant that progress rows only reference lessons of
// courses the student is enrolled in. Free preview lessons are the exception:
// they track progress without an enrollment. Returns the lesson's course ID
// and whether the student is enrolled.
func (svc *service) gate(ctx context.Context, student user.User, lessonID string) (string, bool, error) {
	lsn, err := svc.courseSvc.GetLesson(ctx, lessonID)
	if err != nil {
		return "", false, err
	}
	if _, err = svc.enrollRepo.GetEnrollment(ctx, lsn.CourseID, student.ID); err != nil {
		if errors.Cause(err) == enroll.ErrNotFound {
			if lsn.IsFree {
				return lsn.CourseID, false, nil
			}
			return "", false, ErrNotEnrolled
		}
		return "", false, errors.Wrap(err, "checking enrollment")
	}
	return lsn.CourseID, true, nil
}

func (svc *service) Record(ctx context.Context, student user.User, lessonID string, in RecordInput) (LessonProgress, error) {
	if _, _, err := svc.gate(ctx, student, lessonID); err != nil {
		return LessonProgress{}, err
	}
	return svc.repo.UpsertLessonProgress(ctx, LessonProgress{
		LessonID:    lessonID,
		StudentID:   student.ID,
		WatchedSecs: in.WatchedSecs,
		Played:      in.Played,
		UpdatedAt:   time.Now().UTC(),
	})
}

func (svc *service) Complete(ctx context.Context, student user.User, lessonID string) (LessonProgress, error) {
	courseID, enrolled, err := svc.gate(ctx, student, lessonID)
	if err != nil {
		return LessonProgress{}, err
	}

	now := time.Now().UTC()
	lp, err := svc.repo.UpsertLessonProgress(ctx, LessonProgress{
		LessonID:    lessonID,
		StudentID:   student.ID,
		Played:      1,
		IsCompleted: true,
		CompletedAt: &now,
		UpdatedAt:   now,
	})
	if err != nil {
		return LessonProgress{}, err
	}

	// free previews have no enrollment row to refresh
	if enrolled {
		if _, err = svc.enrollRepo.RefreshEnrollmentProgress(ctx, courseID, student.ID); err != nil {
			return LessonProgress{}, errors.Wrap(err, "refreshing enrollment progress")
		}
	}
	return lp, nil
}

func (svc *service) ListForCourse(ctx context.Context, courseID, studentID string) ([]LessonProgress, error) {
	return svc.repo.ListCourseProgress(ctx, courseID, studentID)
}
