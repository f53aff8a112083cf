package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/user"
)

var (
	// errors
	ErrNotFound             = errors.New("course not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrInvalidTransition    = errors.New("course status can only move forward (draft, published, archived)")
	ErrLessonCourseMismatch = errors.New("lesson does not belong to this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// GetCourseByID returns the course with the teacher's name joined in.
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// FilterCourses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on title, description or category.
		FilterCourses(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		SetCourseStatus(ctx context.Context, id string, status Status) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error

		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		// GetCourseLessons returns all lessons of a course ordered by order_index.
		GetCourseLessons(ctx context.Context, courseID string) ([]Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// ReorderLessons rewrites order_index following the given lesson ID order.
		ReorderLessons(ctx context.Context, courseID string, lessonIDs []string) error
		DeleteLessonsByID(ctx context.Context, ids ...string) error

		// RefreshCourseCounters recomputes total_lessons and duration_mins
		// from the lessons table. enrollment_count is refreshed by the
		// enrollment repository.
		RefreshCourseCounters(ctx context.Context, courseID string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, actor user.User, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		// Search queries published courses only; the catalog surface.
		Search(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Course, error)
		// Query is the unrestricted listing for admins and course owners.
		Query(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Course, error)
		Update(ctx context.Context, actor user.User, id string, uc UpdateCourse) (Course, error)
		SetStatus(ctx context.Context, actor user.User, id string, status Status) (Course, error)
		Delete(ctx context.Context, actor user.User, ids ...string) error

		Lessons(ctx context.Context, courseID string) ([]Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		AddLesson(ctx context.Context, actor user.User, courseID string, nl NewLesson) (Lesson, error)
		UpdateLesson(ctx context.Context, actor user.User, courseID, lessonID string, ul UpdateLesson) (Lesson, error)
		ReorderLessons(ctx context.Context, actor user.User, courseID string, lessonIDs []string) ([]Lesson, error)
		DeleteLesson(ctx context.Context, actor user.User, courseID, lessonID string) error

		CanEdit(actor user.User, crs Course) bool
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// CanEdit is the single authorization predicate for course mutations:
// admins may edit any course, teachers only their own.
func (svc *service) CanEdit(actor user.User, crs Course) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleTeacher:
		return crs.TeacherID == actor.ID
	case user.RoleStudent:
		return false
	}
	return false
}

func (svc *service) editable(ctx context.Context, actor user.User, id string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if !svc.CanEdit(actor, crs) {
		return Course{}, core.ErrPermissionDenied
	}
	return crs, nil
}

func (svc *service) Create(ctx context.Context, actor user.User, nc NewCourse) (Course, error) {
	if !(actor.IsTeacher() || actor.IsAdmin()) {
		return Course{}, core.ErrPermissionDenied
	}
	now := time.Now().UTC()
	crs := Course{
		TeacherID:   actor.ID,
		Title:       nc.Title,
		Description: nc.Description,
		Category:    nc.Category,
		Level:       nc.Level,
		Status:      StatusDraft,
		IsFree:      nc.IsFree,
		PriceCents:  nc.PriceCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if crs.IsFree {
		crs.PriceCents = 0
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Search(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Course, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	filter.Status = StatusPublished
	return svc.repo.FilterCourses(ctx, *filter, orderings...)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Course, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	return svc.repo.FilterCourses(ctx, *filter, orderings...)
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.editable(ctx, actor, id)
	if err != nil {
		return Course{}, err
	}

	crs.Title = uc.Title
	crs.Description = uc.Description
	crs.Category = uc.Category
	crs.Level = uc.Level
	if uc.IsFree != nil {
		crs.IsFree = *uc.IsFree
	}
	if uc.PriceCents != nil {
		crs.PriceCents = *uc.PriceCents
	}
	if uc.ThumbnailURL != "" {
		crs.ThumbnailURL = uc.ThumbnailURL
	}
	if crs.IsFree {
		crs.PriceCents = 0
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) SetStatus(ctx context.Context, actor user.User, id string, status Status) (Course, error) {
	crs, err := svc.editable(ctx, actor, id)
	if err != nil {
		return Course{}, err
	}
	if !crs.Status.CanTransitionTo(status) {
		return Course{}, core.NewValidationError(ErrInvalidTransition, core.FieldError{
			Field: "status", Error: ErrInvalidTransition.Error(),
		})
	}
	return svc.repo.SetCourseStatus(ctx, id, status)
}

func (svc *service) Delete(ctx context.Context, actor user.User, ids ...string) error {
	for _, id := range ids {
		if _, err := svc.editable(ctx, actor, id); err != nil {
			return err
		}
	}
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

func (svc *service) Lessons(ctx context.Context, courseID string) ([]Lesson, error) {
	return svc.repo.GetCourseLessons(ctx, courseID)
}

func (svc *service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *service) AddLesson(ctx context.Context, actor user.User, courseID string, nl NewLesson) (Lesson, error) {
	if _, err := svc.editable(ctx, actor, courseID); err != nil {
		return Lesson{}, err
	}

	orderIdx := 0
	if nl.OrderIndex != nil {
		orderIdx = *nl.OrderIndex
	} else {
		lessons, err := svc.repo.GetCourseLessons(ctx, courseID)
		if err != nil {
			return Lesson{}, errors.Wrap(err, "getting course lessons")
		}
		if n := len(lessons); n > 0 {
			orderIdx = lessons[n-1].OrderIndex + 1
		}
	}

	now := time.Now().UTC()
	lsn := Lesson{
		CourseID:     courseID,
		Title:        nl.Title,
		Description:  nl.Description,
		OrderIndex:   orderIdx,
		VideoURL:     nl.VideoURL,
		DurationMins: nl.DurationMins,
		IsFree:       nl.IsFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	lsn, err := svc.repo.CreateLesson(ctx, lsn)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.repo.RefreshCourseCounters(ctx, courseID); err != nil {
		return Lesson{}, errors.Wrap(err, "refreshing course counters")
	}
	return lsn, nil
}

func (svc *service) UpdateLesson(ctx context.Context, actor user.User, courseID, lessonID string, ul UpdateLesson) (Lesson, error) {
	if _, err := svc.editable(ctx, actor, courseID); err != nil {
		return Lesson{}, err
	}
	lsn, err := svc.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return Lesson{}, err
	}
	if lsn.CourseID != courseID {
		return Lesson{}, ErrLessonNotFound
	}

	lsn.Title = ul.Title
	lsn.Description = ul.Description
	if ul.OrderIndex != nil {
		lsn.OrderIndex = *ul.OrderIndex
	}
	if ul.VideoURL != "" {
		lsn.VideoURL = ul.VideoURL
	}
	if ul.DurationMins != nil {
		lsn.DurationMins = *ul.DurationMins
	}
	if ul.IsFree != nil {
		lsn.IsFree = *ul.IsFree
	}
	lsn.UpdatedAt = time.Now().UTC()

	lsn, err = svc.repo.UpdateLesson(ctx, lsn)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.repo.RefreshCourseCounters(ctx, courseID); err != nil {
		return Lesson{}, errors.Wrap(err, "refreshing course counters")
	}
	return lsn, nil
}

func (svc *service) ReorderLessons(ctx context.Context, actor user.User, courseID string, lessonIDs []string) ([]Lesson, error) {
	if _, err := svc.editable(ctx, actor, courseID); err != nil {
		return nil, err
	}

	lessons, err := svc.repo.GetCourseLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(lessonIDs) != len(lessons) {
		return nil, core.NewValidationError(nil, core.FieldError{
			Field: "lesson_ids", Error: "must list every lesson of the course exactly once",
		})
	}
	known := make(map[string]bool, len(lessons))
	for _, lsn := range lessons {
		known[lsn.ID] = true
	}
	for _, id := range lessonIDs {
		if !known[id] {
			return nil, errors.Wrap(ErrLessonCourseMismatch, id)
		}
		delete(known, id) // catch duplicates
	}

	if err = svc.repo.ReorderLessons(ctx, courseID, lessonIDs); err != nil {
		return nil, err
	}
	return svc.repo.GetCourseLessons(ctx, courseID)
}

func (svc *service) DeleteLesson(ctx context.Context, actor user.User, courseID, lessonID string) error {
	if _, err := svc.editable(ctx, actor, courseID); err != nil {
		return err
	}
	lsn, err := svc.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if lsn.CourseID != courseID {
		return ErrLessonNotFound
	}
	if err = svc.repo.DeleteLessonsByID(ctx, lessonID); err != nil {
		return err
	}
	return svc.repo.RefreshCourseCounters(ctx, courseID)
}
