package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/stats"
)

type statsApi struct {
	svc stats.ServiceInterface
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc stats.ServiceInterface) {
	api := statsApi{svc: svc}

	sg := g.Group("/stats", jwt, adminMiddleware())
	sg.GET("", api.overview)
	sg.GET("/dashboard", api.dashboard)
	sg.GET("/user-growth", api.userGrowth)
	sg.GET("/courses", api.coursePerformance)
	sg.GET("/payments", api.paymentBreakdown)
}

// Handlers

func (api *statsApi) overview(ctx echo.Context) error {
	ov, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting stats overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *statsApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting dashboard stats")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *statsApi) userGrowth(ctx echo.Context) error {
	months, _ := strconv.Atoi(ctx.QueryParam("months"))
	points, err := api.svc.UserGrowth(ctx.Request().Context(), months)
	if err != nil {
		return errors.Wrap(err, "getting user growth")
	}
	if points == nil {
		points = []stats.UserGrowthPoint{}
	}
	return ctx.JSON(http.StatusOK, points)
}

func (api *statsApi) coursePerformance(ctx echo.Context) error {
	perfs, err := api.svc.CoursePerformance(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting course performance")
	}
	if perfs == nil {
		perfs = []stats.CoursePerformance{}
	}
	return ctx.JSON(http.StatusOK, perfs)
}

func (api *statsApi) paymentBreakdown(ctx echo.Context) error {
	bds, err := api.svc.PaymentBreakdown(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting payment breakdown")
	}
	if bds == nil {
		bds = []stats.PaymentBreakdown{}
	}
	return ctx.JSON(http.StatusOK, bds)
}
