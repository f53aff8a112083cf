package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/enroll"
)

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

type enrollmentRow struct {
	ID          string       `db:"id"`
	CourseID    string       `db:"course_id"`
	StudentID   string       `db:"student_id"`
	ProgressPct float64      `db:"progress_pct"`
	EnrolledAt  time.Time    `db:"enrolled_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CourseTitle string       `db:"course_title"`
	StudentName string       `db:"student_name"`
}

func (r enrollmentRow) toEnrollment() enroll.Enrollment {
	enr := enroll.Enrollment{
		ID:          r.ID,
		CourseID:    r.CourseID,
		StudentID:   r.StudentID,
		ProgressPct: r.ProgressPct,
		EnrolledAt:  r.EnrolledAt,
		CourseTitle: r.CourseTitle,
		StudentName: r.StudentName,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		enr.CompletedAt = &t
	}
	return enr
}

func trapEnrollmentNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return enroll.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const enrollmentCols = `
	e.*, c.title AS course_title, u.name AS student_name`

func (repo *enrollmentRepository) UpsertEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	if enr.ID == "" {
		enr.ID = uuid.NewString()
	}
	const insert = `
		INSERT INTO course_enrollments (id, course_id, student_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, student_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, insert, enr.ID, enr.CourseID, enr.StudentID, time.Now().UTC()); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "upserting enrollment")
	}

	const refresh = `
		UPDATE courses SET enrollment_count = (
			SELECT COUNT(*) FROM course_enrollments WHERE course_id = $1
		) WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, refresh, enr.CourseID); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "refreshing enrollment count")
	}

	return repo.GetEnrollment(ctx, enr.CourseID, enr.StudentID)
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, courseID, studentID string) (enroll.Enrollment, error) {
	const q = `
		SELECT ` + enrollmentCols + `
		FROM course_enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = e.student_id
		WHERE e.course_id = $1 AND e.student_id = $2`
	var row enrollmentRow
	if err := repo.db.GetContext(ctx, &row, q, courseID, studentID); err != nil {
		return enroll.Enrollment{}, trapEnrollmentNoRowsErr(err, "finding enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo *enrollmentRepository) ListStudentEnrollments(ctx context.Context, studentID string) ([]enroll.Enrollment, error) {
	const q = `
		SELECT ` + enrollmentCols + `
		FROM course_enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = e.student_id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at DESC`
	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "listing student enrollments")
	}
	return toEnrollments(rows), nil
}

func (repo *enrollmentRepository) ListCourseEnrollments(ctx context.Context, courseID string) ([]enroll.Enrollment, error) {
	const q = `
		SELECT ` + enrollmentCols + `
		FROM course_enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = e.student_id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at DESC`
	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "listing course enrollments")
	}
	return toEnrollments(rows), nil
}

func (repo *enrollmentRepository) RefreshEnrollmentProgress(ctx context.Context, courseID, studentID string) (enroll.Enrollment, error) {
	// pct over the course's current lesson count; 0 lessons means 0 pct.
	// completed_at keeps its first value once set.
	const q = `
		UPDATE course_enrollments e SET
			progress_pct = sub.pct,
			completed_at = CASE
				WHEN sub.pct >= 100 THEN COALESCE(e.completed_at, NOW())
				ELSE e.completed_at
			END
		FROM (
			SELECT CASE WHEN COUNT(l.id) = 0 THEN 0
				ELSE 100.0 * COUNT(lp.id) FILTER (WHERE lp.is_completed) / COUNT(l.id)
			END AS pct
			FROM lessons l
			LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.student_id = $2
			WHERE l.course_id = $1
		) sub
		WHERE e.course_id = $1 AND e.student_id = $2`
	res, err := repo.db.ExecContext(ctx, q, courseID, studentID)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "refreshing enrollment progress")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return repo.GetEnrollment(ctx, courseID, studentID)
}

func toEnrollments(rows []enrollmentRow) []enroll.Enrollment {
	enrs := make([]enroll.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrs = append(enrs, r.toEnrollment())
	}
	return enrs
}
