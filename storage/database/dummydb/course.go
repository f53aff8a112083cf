package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/course"
)

type courseRepository struct {
	db    *courseTable
	users *userTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db.course, users: db.user}
}

func (repo *courseRepository) teacherName(id string) string {
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[id]; ok {
		return usr.Name
	}
	return ""
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	repo.db.courses[crs.ID] = &crs
	crs.TeacherName = repo.teacherName(crs.TeacherID)
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		c := *crs
		c.TeacherName = repo.teacherName(c.TeacherID)
		return c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, orderings ...core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.query()

	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []course.Course
		for _, c := range courses {
			if strings.Contains(strings.ToLower(c.Title), search) ||
				strings.Contains(strings.ToLower(c.Description), search) ||
				strings.Contains(strings.ToLower(c.Category), search) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.Category != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.Category == filter.Category {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.Level != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.Level == filter.Level {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.Status != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.Status == filter.Status {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.TeacherID != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.TeacherID == filter.TeacherID {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.IsFree != nil {
		var filtered []course.Course
		for _, c := range courses {
			if c.IsFree == *filter.IsFree {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	for i := range courses {
		courses[i].TeacherName = repo.teacherName(courses[i].TeacherID)
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Title = crs.Title
	orig.Description = crs.Description
	orig.Category = crs.Category
	orig.Level = crs.Level
	orig.IsFree = crs.IsFree
	orig.PriceCents = crs.PriceCents
	orig.ThumbnailURL = crs.ThumbnailURL
	orig.UpdatedAt = crs.UpdatedAt

	c := *orig
	c.TeacherName = repo.teacherName(c.TeacherID)
	return c, nil
}

func (repo *courseRepository) SetCourseStatus(ctx context.Context, id string, status course.Status) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Status = status
	orig.UpdatedAt = time.Now().UTC()

	c := *orig
	c.TeacherName = repo.teacherName(c.TeacherID)
	return c, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.courses, id)
		for lid, lsn := range repo.db.lessons {
			if lsn.CourseID == id {
				delete(repo.db.lessons, lid)
			}
		}
	}
	return nil
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if lsn.ID == "" {
		lsn.ID = uuid.NewString()
	}
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) GetLessonByID(ctx context.Context, id string) (course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lsn, ok := repo.db.lessons[id]; ok {
		return *lsn, nil
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) GetCourseLessons(ctx context.Context, courseID string) ([]course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.courseLessons(courseID), nil
}

func (repo *courseRepository) courseLessons(courseID string) []course.Lesson {
	lessons := make([]course.Lesson, 0)
	for _, lsn := range repo.db.lessons {
		if lsn.CourseID == courseID {
			lessons = append(lessons, *lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].OrderIndex != lessons[j].OrderIndex {
			return lessons[i].OrderIndex < lessons[j].OrderIndex
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})
	return lessons
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.lessons[lsn.ID]
	if !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	orig.Title = lsn.Title
	orig.Description = lsn.Description
	orig.OrderIndex = lsn.OrderIndex
	orig.VideoURL = lsn.VideoURL
	orig.DurationMins = lsn.DurationMins
	orig.IsFree = lsn.IsFree
	orig.UpdatedAt = lsn.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) ReorderLessons(ctx context.Context, courseID string, lessonIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	for i, id := range lessonIDs {
		if lsn, ok := repo.db.lessons[id]; ok && lsn.CourseID == courseID {
			lsn.OrderIndex = i
			lsn.UpdatedAt = now
		}
	}
	return nil
}

func (repo *courseRepository) DeleteLessonsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.lessons, id)
	}
	return nil
}

func (repo *courseRepository) RefreshCourseCounters(ctx context.Context, courseID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	total, mins := 0, 0
	for _, lsn := range repo.db.lessons {
		if lsn.CourseID == courseID {
			total++
			mins += lsn.DurationMins
		}
	}
	crs.TotalLessons = total
	crs.DurationMins = mins
	return nil
}
