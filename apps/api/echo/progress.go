package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/progress"
	"github.com/darisacademy/daris/core/user"
)

type progressApi struct {
	svc      progress.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc progress.ServiceInterface, userSvc user.ServiceInterface, validate *validator.Validate) {
	api := progressApi{
		svc:      svc,
		userSvc:  userSvc,
		validate: validate,
	}

	pg := g.Group("/progress", jwt)
	pg.GET("/lessons/:lessonID", api.retrieve)
	pg.PUT("/lessons/:lessonID", api.record)
	pg.POST("/lessons/:lessonID/complete", api.complete)
	pg.GET("/courses/:courseID", api.listForCourse)
}

// Handlers

func (api *progressApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lp, err := api.svc.Get(ctx.Request().Context(), ctx.Param("lessonID"), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "getting lesson progress")
	}
	return ctx.JSON(http.StatusOK, lp)
}

func (api *progressApi) record(ctx echo.Context) error {
	var data progress.RecordInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lp, err := api.svc.Record(ctx.Request().Context(), ctxUsr, ctx.Param("lessonID"), data)
	if err != nil {
		return errors.Wrap(err, "recording lesson progress")
	}
	return ctx.JSON(http.StatusOK, lp)
}

func (api *progressApi) complete(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lp, err := api.svc.Complete(ctx.Request().Context(), ctxUsr, ctx.Param("lessonID"))
	if err != nil {
		return errors.Wrap(err, "completing lesson")
	}
	return ctx.JSON(http.StatusOK, lp)
}

func (api *progressApi) listForCourse(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lps, err := api.svc.ListForCourse(ctx.Request().Context(), ctx.Param("courseID"), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "listing course progress")
	}
	if lps == nil {
		lps = []progress.LessonProgress{}
	}
	return ctx.JSON(http.StatusOK, lps)
}
