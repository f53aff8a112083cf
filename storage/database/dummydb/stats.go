package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/stats"
	"github.com/darisacademy/daris/core/user"
)

type statsRepository struct {
	db *DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) DashboardCounts(ctx context.Context) (stats.Dashboard, error) {
	var dash stats.Dashboard

	repo.db.user.RLock()
	for _, usr := range repo.db.user.table {
		dash.TotalUsers++
		switch usr.Role {
		case user.RoleTeacher:
			dash.TotalTeachers++
		case user.RoleStudent:
			dash.TotalStudents++
		case user.RoleAdmin:
		}
	}
	repo.db.user.RUnlock()

	repo.db.course.RLock()
	for _, crs := range repo.db.course.courses {
		dash.TotalCourses++
		if crs.Status == course.StatusPublished {
			dash.PublishedCourses++
		}
	}
	repo.db.course.RUnlock()

	repo.db.enrollment.RLock()
	dash.TotalEnrollments = len(repo.db.enrollment.table)
	repo.db.enrollment.RUnlock()

	repo.db.payment.RLock()
	for _, pmt := range repo.db.payment.table {
		switch pmt.Status {
		case payment.StatusPending:
			dash.PendingPayments++
		case payment.StatusCompleted:
			dash.CompletedPayments++
			dash.RevenueCents += pmt.AmountCents
		case payment.StatusFailed, payment.StatusRefunded:
		}
	}
	repo.db.payment.RUnlock()

	return dash, nil
}

func (repo *statsRepository) UserGrowth(ctx context.Context, months int) ([]stats.UserGrowthPoint, error) {
	now := time.Now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	byMonth := make(map[time.Time]int)
	repo.db.user.RLock()
	for _, usr := range repo.db.user.table {
		created := usr.CreatedAt.UTC()
		if created.Before(cutoff) {
			continue
		}
		month := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[month]++
	}
	repo.db.user.RUnlock()

	points := make([]stats.UserGrowthPoint, 0, len(byMonth))
	for month, signups := range byMonth {
		points = append(points, stats.UserGrowthPoint{Month: month, Signups: signups})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points, nil
}

func (repo *statsRepository) CoursePerformance(ctx context.Context) ([]stats.CoursePerformance, error) {
	perfByID := make(map[string]*stats.CoursePerformance)

	repo.db.course.RLock()
	for id, crs := range repo.db.course.courses {
		perfByID[id] = &stats.CoursePerformance{CourseID: id, Title: crs.Title}
	}
	repo.db.course.RUnlock()

	repo.db.enrollment.RLock()
	for _, enr := range repo.db.enrollment.table {
		if perf, ok := perfByID[enr.CourseID]; ok {
			perf.Enrollments++
			if enr.Completed() {
				perf.Completions++
			}
		}
	}
	repo.db.enrollment.RUnlock()

	repo.db.payment.RLock()
	for _, pmt := range repo.db.payment.table {
		if perf, ok := perfByID[pmt.CourseID]; ok && pmt.Status == payment.StatusCompleted {
			perf.RevenueCents += pmt.AmountCents
		}
	}
	repo.db.payment.RUnlock()

	perfs := make([]stats.CoursePerformance, 0, len(perfByID))
	for _, perf := range perfByID {
		if perf.Enrollments > 0 {
			perf.CompletionRate = float64(perf.Completions) / float64(perf.Enrollments)
		}
		perfs = append(perfs, *perf)
	}
	sort.Slice(perfs, func(i, j int) bool {
		if perfs[i].Enrollments != perfs[j].Enrollments {
			return perfs[i].Enrollments > perfs[j].Enrollments
		}
		return perfs[i].Title < perfs[j].Title
	})
	return perfs, nil
}

func (repo *statsRepository) PaymentBreakdown(ctx context.Context) ([]stats.PaymentBreakdown, error) {
	byStatus := make(map[string]*stats.PaymentBreakdown)

	repo.db.payment.RLock()
	for _, pmt := range repo.db.payment.table {
		bd, ok := byStatus[string(pmt.Status)]
		if !ok {
			bd = &stats.PaymentBreakdown{Status: string(pmt.Status)}
			byStatus[string(pmt.Status)] = bd
		}
		bd.Count++
		bd.AmountCents += pmt.AmountCents
	}
	repo.db.payment.RUnlock()

	bds := make([]stats.PaymentBreakdown, 0, len(byStatus))
	for _, bd := range byStatus {
		bds = append(bds, *bd)
	}
	sort.Slice(bds, func(i, j int) bool { return bds[i].Status < bds[j].Status })
	return bds, nil
}
