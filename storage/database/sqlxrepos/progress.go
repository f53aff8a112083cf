package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

type progressRow struct {
	ID          string       `db:"id"`
	LessonID    string       `db:"lesson_id"`
	StudentID   string       `db:"student_id"`
	WatchedSecs int          `db:"watched_secs"`
	Played      float64      `db:"played"`
	IsCompleted bool         `db:"is_completed"`
	CompletedAt sql.NullTime `db:"completed_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r progressRow) toProgress() progress.LessonProgress {
	lp := progress.LessonProgress{
		ID:          r.ID,
		LessonID:    r.LessonID,
		StudentID:   r.StudentID,
		WatchedSecs: r.WatchedSecs,
		Played:      r.Played,
		IsCompleted: r.IsCompleted,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		lp.CompletedAt = &t
	}
	return lp
}

func trapProgressNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return progress.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *progressRepository) GetLessonProgress(ctx context.Context, lessonID, studentID string) (progress.LessonProgress, error) {
	const q = `SELECT * FROM lesson_progress WHERE lesson_id = $1 AND student_id = $2`
	var row progressRow
	if err := repo.db.GetContext(ctx, &row, q, lessonID, studentID); err != nil {
		return progress.LessonProgress{}, trapProgressNoRowsErr(err, "finding lesson progress")
	}
	return row.toProgress(), nil
}

func (repo *progressRepository) UpsertLessonProgress(ctx context.Context, lp progress.LessonProgress) (progress.LessonProgress, error) {
	if lp.ID == "" {
		lp.ID = uuid.NewString()
	}
	// counters only move forward; completion is one-way and completed_at
	// keeps its first value.
	const q = `
		INSERT INTO lesson_progress (id, lesson_id, student_id, watched_secs, played, is_completed, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lesson_id, student_id) DO UPDATE SET
			watched_secs = GREATEST(lesson_progress.watched_secs, EXCLUDED.watched_secs),
			played = GREATEST(lesson_progress.played, EXCLUDED.played),
			is_completed = lesson_progress.is_completed OR EXCLUDED.is_completed,
			completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at),
			updated_at = EXCLUDED.updated_at
		RETURNING *`
	var completedAt sql.NullTime
	if lp.CompletedAt != nil {
		completedAt = sql.NullTime{Time: lp.CompletedAt.UTC(), Valid: true}
	}
	var row progressRow
	err := repo.db.GetContext(ctx, &row, q,
		lp.ID, lp.LessonID, lp.StudentID, lp.WatchedSecs, lp.Played,
		lp.IsCompleted, completedAt, lp.UpdatedAt.UTC(),
	)
	if err != nil {
		return progress.LessonProgress{}, errors.Wrap(err, "upserting lesson progress")
	}
	return row.toProgress(), nil
}

func (repo *progressRepository) ListCourseProgress(ctx context.Context, courseID, studentID string) ([]progress.LessonProgress, error) {
	const q = `
		SELECT lp.*
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id
		WHERE l.course_id = $1 AND lp.student_id = $2
		ORDER BY l.order_index`
	var rows []progressRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseID, studentID); err != nil {
		return nil, errors.Wrap(err, "listing course progress")
	}
	lps := make([]progress.LessonProgress, 0, len(rows))
	for _, r := range rows {
		lps = append(lps, r.toProgress())
	}
	return lps, nil
}
