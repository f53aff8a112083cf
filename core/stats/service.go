package stats

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type (
	Repository interface {
		DashboardCounts(ctx context.Context) (Dashboard, error)
		UserGrowth(ctx context.Context, months int) ([]UserGrowthPoint, error)
		CoursePerformance(ctx context.Context) ([]CoursePerformance, error)
		PaymentBreakdown(ctx context.Context) ([]PaymentBreakdown, error)
	}

	// Overview bundles every admin aggregate in one response.
	Overview struct {
		Dashboard   Dashboard           `json:"dashboard"`
		UserGrowth  []UserGrowthPoint   `json:"user_growth"`
		Courses     []CoursePerformance `json:"courses"`
		Payments    []PaymentBreakdown  `json:"payments"`
	}

	ServiceInterface interface {
		Dashboard(ctx context.Context) (Dashboard, error)
		UserGrowth(ctx context.Context, months int) ([]UserGrowthPoint, error)
		CoursePerformance(ctx context.Context) ([]CoursePerformance, error)
		PaymentBreakdown(ctx context.Context) ([]PaymentBreakdown, error)
		// Overview fans the four aggregations out concurrently.
		Overview(ctx context.Context) (Overview, error)
	}

	service struct {
		repo Repository
	}
)

const defaultGrowthMonths = 12

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Dashboard(ctx context.Context) (Dashboard, error) {
	return svc.repo.DashboardCounts(ctx)
}

func (svc *service) UserGrowth(ctx context.Context, months int) ([]UserGrowthPoint, error) {
	if months <= 0 {
		months = defaultGrowthMonths
	}
	return svc.repo.UserGrowth(ctx, months)
}

func (svc *service) CoursePerformance(ctx context.Context) ([]CoursePerformance, error) {
	return svc.repo.CoursePerformance(ctx)
}

func (svc *service) PaymentBreakdown(ctx context.Context) ([]PaymentBreakdown, error) {
	return svc.repo.PaymentBreakdown(ctx)
}

func (svc *service) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		ov.Dashboard, err = svc.repo.DashboardCounts(ctx)
		return
	})
	g.Go(func() (err error) {
		ov.UserGrowth, err = svc.repo.UserGrowth(ctx, defaultGrowthMonths)
		return
	})
	g.Go(func() (err error) {
		ov.Courses, err = svc.repo.CoursePerformance(ctx)
		return
	})
	g.Go(func() (err error) {
		ov.Payments, err = svc.repo.PaymentBreakdown(ctx)
		return
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}
