package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/user"
)

type enrollmentApi struct {
	svc     enroll.ServiceInterface
	userSvc user.ServiceInterface
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc enroll.ServiceInterface, userSvc user.ServiceInterface) {
	api := enrollmentApi{
		svc:     svc,
		userSvc: userSvc,
	}

	eg := g.Group("/enrollments", jwt)
	eg.POST("", api.enroll)
	eg.GET("", api.listMine)
	eg.GET("/:courseID", api.retrieveMine)
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if data.CourseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "course_id is required")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enr, err := api.svc.Enroll(ctx.Request().Context(), ctxUsr, data.CourseID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) listMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enrs, err := api.svc.ListForStudent(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	if enrs == nil {
		enrs = []enroll.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) retrieveMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enr, err := api.svc.Get(ctx.Request().Context(), ctx.Param("courseID"), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "finding enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

type EnrollRequest struct {
	CourseID string `json:"course_id"`
}
