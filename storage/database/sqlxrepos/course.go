package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID              string    `db:"id"`
	TeacherID       string    `db:"teacher_id"`
	TeacherName     string    `db:"teacher_name"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Category        string    `db:"category"`
	Level           string    `db:"level"`
	Status          string    `db:"status"`
	IsFree          bool      `db:"is_free"`
	PriceCents      int64     `db:"price_cents"`
	ThumbnailURL    string    `db:"thumbnail_url"`
	EnrollmentCount int       `db:"enrollment_count"`
	TotalLessons    int       `db:"total_lessons"`
	DurationMins    int       `db:"duration_mins"`
	Rating          float64   `db:"rating"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:              r.ID,
		TeacherID:       r.TeacherID,
		TeacherName:     r.TeacherName,
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Level:           course.Level(r.Level),
		Status:          course.Status(r.Status),
		IsFree:          r.IsFree,
		PriceCents:      r.PriceCents,
		ThumbnailURL:    r.ThumbnailURL,
		EnrollmentCount: r.EnrollmentCount,
		TotalLessons:    r.TotalLessons,
		DurationMins:    r.DurationMins,
		Rating:          r.Rating,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type lessonRow struct {
	ID           string    `db:"id"`
	CourseID     string    `db:"course_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	OrderIndex   int       `db:"order_index"`
	VideoURL     string    `db:"video_url"`
	DurationMins int       `db:"duration_mins"`
	IsFree       bool      `db:"is_free"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r lessonRow) toLesson() course.Lesson {
	return course.Lesson(r)
}

const courseCols = `
	c.*, u.name AS teacher_name`

func trapCourseNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func trapLessonNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return course.ErrLessonNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO courses (id, teacher_id, title, description, category, level, status, is_free, price_cents, thumbnail_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.TeacherID, crs.Title, crs.Description, crs.Category, crs.Level, crs.Status,
		crs.IsFree, crs.PriceCents, crs.ThumbnailURL, crs.CreatedAt.UTC(), crs.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	const q = `
		SELECT ` + courseCols + `
		FROM courses c
		JOIN users u ON u.id = c.teacher_id
		WHERE c.id = $1`
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return course.Course{}, trapCourseNoRowsErr(err, "finding course by ID")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, orderings ...core.DBOrdering) ([]course.Course, error) {
	qb := psql.Select("c.*", "u.name AS teacher_name").
		From("courses c").
		Join("users u ON u.id = c.teacher_id")

	if filter.Search != "" {
		pat := searchPattern(filter.Search)
		qb = qb.Where(sq.Or{
			sq.ILike{"c.title": pat},
			sq.ILike{"c.description": pat},
			sq.ILike{"c.category": pat},
		})
	}
	if filter.Category != "" {
		qb = qb.Where(sq.Eq{"c.category": filter.Category})
	}
	if filter.Level != "" {
		qb = qb.Where(sq.Eq{"c.level": filter.Level})
	}
	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"c.status": filter.Status})
	}
	if filter.TeacherID != "" {
		qb = qb.Where(sq.Eq{"c.teacher_id": filter.TeacherID})
	}
	if filter.IsFree != nil {
		qb = qb.Where(sq.Eq{"c.is_free": *filter.IsFree})
	}
	if len(orderings) == 0 {
		qb = qb.OrderBy("c.created_at DESC")
	}
	for _, ord := range orderings {
		qb = qb.OrderBy("c." + ord.String())
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []courseRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `
		UPDATE courses SET
			title = $1, description = $2, category = $3, level = $4,
			is_free = $5, price_cents = $6, thumbnail_url = $7, updated_at = $8
		WHERE id = $9`
	res, err := repo.db.ExecContext(ctx, q,
		crs.Title, crs.Description, crs.Category, crs.Level,
		crs.IsFree, crs.PriceCents, crs.ThumbnailURL, crs.UpdatedAt.UTC(), crs.ID,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) SetCourseStatus(ctx context.Context, id string, status course.Status) (course.Course, error) {
	const q = `UPDATE courses SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, status, time.Now().UTC(), id)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "setting course status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, id)
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("courses").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	if lsn.ID == "" {
		lsn.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO lessons (id, course_id, title, description, order_index, video_url, duration_mins, is_free, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		lsn.ID, lsn.CourseID, lsn.Title, lsn.Description, lsn.OrderIndex,
		lsn.VideoURL, lsn.DurationMins, lsn.IsFree, lsn.CreatedAt.UTC(), lsn.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	return lsn, nil
}

func (repo *courseRepository) GetLessonByID(ctx context.Context, id string) (course.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lessons WHERE id = $1`, id); err != nil {
		return course.Lesson{}, trapLessonNoRowsErr(err, "finding lesson by ID")
	}
	return row.toLesson(), nil
}

func (repo *courseRepository) GetCourseLessons(ctx context.Context, courseID string) ([]course.Lesson, error) {
	const q = `SELECT * FROM lessons WHERE course_id = $1 ORDER BY order_index, created_at`
	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "getting course lessons")
	}
	lessons := make([]course.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.toLesson())
	}
	return lessons, nil
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	const q = `
		UPDATE lessons SET
			title = $1, description = $2, order_index = $3, video_url = $4,
			duration_mins = $5, is_free = $6, updated_at = $7
		WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, q,
		lsn.Title, lsn.Description, lsn.OrderIndex, lsn.VideoURL,
		lsn.DurationMins, lsn.IsFree, lsn.UpdatedAt.UTC(), lsn.ID,
	)
	if err != nil {
		return course.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	return lsn, nil
}

func (repo *courseRepository) ReorderLessons(ctx context.Context, courseID string, lessonIDs []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `UPDATE lessons SET order_index = $1, updated_at = $2 WHERE id = $3 AND course_id = $4`
	now := time.Now().UTC()
	for i, id := range lessonIDs {
		if _, err = tx.ExecContext(ctx, q, i, now, id, courseID); err != nil {
			return errors.Wrap(err, "reordering lessons")
		}
	}
	return errors.Wrap(tx.Commit(), "committing reorder")
}

func (repo *courseRepository) DeleteLessonsByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("lessons").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting lessons")
	}
	return nil
}

func (repo *courseRepository) RefreshCourseCounters(ctx context.Context, courseID string) error {
	const q = `
		UPDATE courses SET
			total_lessons = sub.cnt,
			duration_mins = sub.mins
		FROM (
			SELECT COUNT(*) AS cnt, COALESCE(SUM(duration_mins), 0) AS mins
			FROM lessons WHERE course_id = $1
		) sub
		WHERE id = $1`
	_, err := repo.db.ExecContext(ctx, q, courseID)
	return errors.Wrap(err, "refreshing course counters")
}
