package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/darisacademy/daris/core/enroll"
)

type enrollmentRepository struct {
	db       *enrollmentTable
	courses  *courseTable
	users    *userTable
	progress *progressTable
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment, courses: db.course, users: db.user, progress: db.progress}
}

func (repo *enrollmentRepository) joined(enr enroll.Enrollment) enroll.Enrollment {
	repo.courses.RLock()
	if crs, ok := repo.courses.courses[enr.CourseID]; ok {
		enr.CourseTitle = crs.Title
	}
	repo.courses.RUnlock()

	repo.users.RLock()
	if usr, ok := repo.users.table[enr.StudentID]; ok {
		enr.StudentName = usr.Name
	}
	repo.users.RUnlock()
	return enr
}

func (repo *enrollmentRepository) find(courseID, studentID string) (*enroll.Enrollment, bool) {
	for _, enr := range repo.db.table {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return enr, true
		}
	}
	return nil, false
}

func (repo *enrollmentRepository) UpsertEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	if existing, ok := repo.find(enr.CourseID, enr.StudentID); ok {
		e := *existing
		repo.db.Unlock()
		return repo.joined(e), nil
	}
	if enr.ID == "" {
		enr.ID = uuid.NewString()
	}
	enr.EnrolledAt = time.Now().UTC()
	repo.db.table[enr.ID] = &enr

	count := 0
	for _, e := range repo.db.table {
		if e.CourseID == enr.CourseID {
			count++
		}
	}
	repo.db.Unlock()

	repo.courses.Lock()
	if crs, ok := repo.courses.courses[enr.CourseID]; ok {
		crs.EnrollmentCount = count
	}
	repo.courses.Unlock()

	return repo.joined(enr), nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, courseID, studentID string) (enroll.Enrollment, error) {
	repo.db.RLock()
	existing, ok := repo.find(courseID, studentID)
	if !ok {
		repo.db.RUnlock()
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	enr := *existing
	repo.db.RUnlock()
	return repo.joined(enr), nil
}

func (repo *enrollmentRepository) ListStudentEnrollments(ctx context.Context, studentID string) ([]enroll.Enrollment, error) {
	repo.db.RLock()
	enrs := make([]enroll.Enrollment, 0)
	for _, enr := range repo.db.table {
		if enr.StudentID == studentID {
			enrs = append(enrs, *enr)
		}
	}
	repo.db.RUnlock()
	return repo.sorted(enrs), nil
}

func (repo *enrollmentRepository) ListCourseEnrollments(ctx context.Context, courseID string) ([]enroll.Enrollment, error) {
	repo.db.RLock()
	enrs := make([]enroll.Enrollment, 0)
	for _, enr := range repo.db.table {
		if enr.CourseID == courseID {
			enrs = append(enrs, *enr)
		}
	}
	repo.db.RUnlock()
	return repo.sorted(enrs), nil
}

func (repo *enrollmentRepository) sorted(enrs []enroll.Enrollment) []enroll.Enrollment {
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })
	for i := range enrs {
		enrs[i] = repo.joined(enrs[i])
	}
	return enrs
}

func (repo *enrollmentRepository) RefreshEnrollmentProgress(ctx context.Context, courseID, studentID string) (enroll.Enrollment, error) {
	lessonIDs := make(map[string]bool)
	repo.courses.RLock()
	for id, lsn := range repo.courses.lessons {
		if lsn.CourseID == courseID {
			lessonIDs[id] = true
		}
	}
	repo.courses.RUnlock()

	completed := 0
	repo.progress.RLock()
	for _, lp := range repo.progress.table {
		if lp.StudentID == studentID && lp.IsCompleted && lessonIDs[lp.LessonID] {
			completed++
		}
	}
	repo.progress.RUnlock()

	var pct float64
	if n := len(lessonIDs); n > 0 {
		pct = 100 * float64(completed) / float64(n)
	}

	repo.db.Lock()
	existing, ok := repo.find(courseID, studentID)
	if !ok {
		repo.db.Unlock()
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	existing.ProgressPct = pct
	if pct >= 100 && existing.CompletedAt == nil {
		now := time.Now().UTC()
		existing.CompletedAt = &now
	}
	enr := *existing
	repo.db.Unlock()
	return repo.joined(enr), nil
}
