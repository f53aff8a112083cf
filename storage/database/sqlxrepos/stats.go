package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/stats"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) DashboardCounts(ctx context.Context) (stats.Dashboard, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE role = 'teacher') AS total_teachers,
			(SELECT COUNT(*) FROM users WHERE role = 'student') AS total_students,
			(SELECT COUNT(*) FROM courses) AS total_courses,
			(SELECT COUNT(*) FROM courses WHERE status = 'published') AS published_courses,
			(SELECT COUNT(*) FROM course_enrollments) AS total_enrollments,
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'completed') AS revenue_cents,
			(SELECT COUNT(*) FROM payments WHERE status = 'pending') AS pending_payments,
			(SELECT COUNT(*) FROM payments WHERE status = 'completed') AS completed_payments`
	var row struct {
		TotalUsers        int   `db:"total_users"`
		TotalTeachers     int   `db:"total_teachers"`
		TotalStudents     int   `db:"total_students"`
		TotalCourses      int   `db:"total_courses"`
		PublishedCourses  int   `db:"published_courses"`
		TotalEnrollments  int   `db:"total_enrollments"`
		RevenueCents      int64 `db:"revenue_cents"`
		PendingPayments   int   `db:"pending_payments"`
		CompletedPayments int   `db:"completed_payments"`
	}
	if err := repo.db.GetContext(ctx, &row, q); err != nil {
		return stats.Dashboard{}, errors.Wrap(err, "getting dashboard counts")
	}
	return stats.Dashboard(row), nil
}

func (repo *statsRepository) UserGrowth(ctx context.Context, months int) ([]stats.UserGrowthPoint, error) {
	const q = `
		SELECT date_trunc('month', created_at) AS month, COUNT(*) AS signups
		FROM users
		WHERE created_at >= date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month'
		GROUP BY month
		ORDER BY month`
	var rows []struct {
		Month   time.Time `db:"month"`
		Signups int       `db:"signups"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q, months); err != nil {
		return nil, errors.Wrap(err, "getting user growth")
	}
	points := make([]stats.UserGrowthPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, stats.UserGrowthPoint(r))
	}
	return points, nil
}

func (repo *statsRepository) CoursePerformance(ctx context.Context) ([]stats.CoursePerformance, error) {
	const q = `
		SELECT
			c.id AS course_id,
			c.title,
			COUNT(e.id) AS enrollments,
			COUNT(e.id) FILTER (WHERE e.completed_at IS NOT NULL) AS completions,
			CASE WHEN COUNT(e.id) = 0 THEN 0
				ELSE COUNT(e.id) FILTER (WHERE e.completed_at IS NOT NULL)::float / COUNT(e.id)
			END AS completion_rate,
			COALESCE((
				SELECT SUM(amount_cents) FROM payments
				WHERE course_id = c.id AND status = 'completed'
			), 0) AS revenue_cents
		FROM courses c
		LEFT JOIN course_enrollments e ON e.course_id = c.id
		GROUP BY c.id, c.title
		ORDER BY enrollments DESC, c.title`
	var rows []struct {
		CourseID       string  `db:"course_id"`
		Title          string  `db:"title"`
		Enrollments    int     `db:"enrollments"`
		Completions    int     `db:"completions"`
		CompletionRate float64 `db:"completion_rate"`
		RevenueCents   int64   `db:"revenue_cents"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "getting course performance")
	}
	perfs := make([]stats.CoursePerformance, 0, len(rows))
	for _, r := range rows {
		perfs = append(perfs, stats.CoursePerformance(r))
	}
	return perfs, nil
}

func (repo *statsRepository) PaymentBreakdown(ctx context.Context) ([]stats.PaymentBreakdown, error) {
	const q = `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS amount_cents
		FROM payments
		GROUP BY status
		ORDER BY status`
	var rows []struct {
		Status      string `db:"status"`
		Count       int    `db:"count"`
		AmountCents int64  `db:"amount_cents"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "getting payment breakdown")
	}
	bds := make([]stats.PaymentBreakdown, 0, len(rows))
	for _, r := range rows {
		bds = append(bds, stats.PaymentBreakdown(r))
	}
	return bds, nil
}
