package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darisacademy/daris/core/progress"
)

type progressRepository struct {
	db      *progressTable
	courses *courseTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress, courses: db.course}
}

func (repo *progressRepository) find(lessonID, studentID string) (*progress.LessonProgress, bool) {
	for _, lp := range repo.db.table {
		if lp.LessonID == lessonID && lp.StudentID == studentID {
			return lp, true
		}
	}
	return nil, false
}

func (repo *progressRepository) GetLessonProgress(ctx context.Context, lessonID, studentID string) (progress.LessonProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lp, ok := repo.find(lessonID, studentID); ok {
		return *lp, nil
	}
	return progress.LessonProgress{}, progress.ErrNotFound
}

func (repo *progressRepository) UpsertLessonProgress(ctx context.Context, lp progress.LessonProgress) (progress.LessonProgress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.find(lp.LessonID, lp.StudentID)
	if !ok {
		if lp.ID == "" {
			lp.ID = uuid.NewString()
		}
		repo.db.table[lp.ID] = &lp
		return lp, nil
	}

	// counters only move forward; completion is one-way
	if lp.WatchedSecs > orig.WatchedSecs {
		orig.WatchedSecs = lp.WatchedSecs
	}
	if lp.Played > orig.Played {
		orig.Played = lp.Played
	}
	if lp.IsCompleted {
		orig.IsCompleted = true
	}
	if orig.CompletedAt == nil && lp.CompletedAt != nil {
		orig.CompletedAt = lp.CompletedAt
	}
	orig.UpdatedAt = lp.UpdatedAt
	return *orig, nil
}

func (repo *progressRepository) ListCourseProgress(ctx context.Context, courseID, studentID string) ([]progress.LessonProgress, error) {
	lessonOrder := make(map[string]int)
	repo.courses.RLock()
	for id, lsn := range repo.courses.lessons {
		if lsn.CourseID == courseID {
			lessonOrder[id] = lsn.OrderIndex
		}
	}
	repo.courses.RUnlock()

	repo.db.RLock()
	lps := make([]progress.LessonProgress, 0)
	for _, lp := range repo.db.table {
		if _, ok := lessonOrder[lp.LessonID]; ok && lp.StudentID == studentID {
			lps = append(lps, *lp)
		}
	}
	repo.db.RUnlock()

	sort.Slice(lps, func(i, j int) bool { return lessonOrder[lps[i].LessonID] < lessonOrder[lps[j].LessonID] })
	return lps, nil
}
