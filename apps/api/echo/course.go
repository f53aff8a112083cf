package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/user"
)

type courseApi struct {
	svc       course.ServiceInterface
	userSvc   user.ServiceInterface
	enrollSvc enroll.ServiceInterface
	validate  *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc course.ServiceInterface,
	userSvc user.ServiceInterface,
	enrollSvc enroll.ServiceInterface,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:       svc,
		userSvc:   userSvc,
		enrollSvc: enrollSvc,
		validate:  validate,
	}

	cg := g.Group("/courses")

	// authed endpoints
	ag := cg.Group("", jwt)
	ag.GET("/all", api.query, teacherMiddleware())
	ag.POST("", api.create, teacherMiddleware())
	ag.PUT("/:id", api.update, teacherMiddleware())
	ag.PUT("/:id/status", api.setStatus, teacherMiddleware())
	ag.DELETE("/:id", api.destroy, teacherMiddleware())

	ag.POST("/:id/lessons", api.addLesson, teacherMiddleware())
	ag.PUT("/:id/lessons/reorder", api.reorderLessons, teacherMiddleware())
	ag.PUT("/:id/lessons/:lessonID", api.updateLesson, teacherMiddleware())
	ag.DELETE("/:id/lessons/:lessonID", api.destroyLesson, teacherMiddleware())

	ag.GET("/:id/enrollments", api.enrollments, teacherMiddleware())

	// catalog endpoints; published courses only. Registered after the authed
	// sub-group so they override the catch-all routes the group adds on the
	// bare prefix and stay reachable without a token.
	cg.GET("", api.search)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/lessons", api.lessons)
}

// Handlers

func (api *courseApi) search(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Search(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "searching courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

// query is the unrestricted listing. Teachers see their own courses in any
// status; admins see everything.
func (api *courseApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	if !ctxUsr.IsAdmin() {
		filter.TeacherID = ctxUsr.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) lessons(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	lessons, err := api.svc.Lessons(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "getting course lessons")
	}
	if lessons == nil {
		lessons = []course.Lesson{}
	}

	// paid lesson videos are for enrolled students and course staff; free
	// preview lessons keep their URL for everyone
	if !api.canSeeVideos(ctx, crs) {
		for i := range lessons {
			if !lessons[i].IsFree {
				lessons[i].VideoURL = ""
			}
		}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

// canSeeVideos reports whether the caller may see paid lesson video URLs.
// The catalog route is public, so the token is parsed opportunistically.
func (api *courseApi) canSeeVideos(ctx echo.Context, crs course.Course) bool {
	claims, err := parseBearerClaims(ctx)
	if err != nil {
		return false
	}
	usr, err := api.userSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return false
	}
	if api.svc.CanEdit(usr, crs) {
		return true
	}
	enrolled, err := api.enrollSvc.IsEnrolled(ctx.Request().Context(), crs.ID, usr.ID)
	return err == nil && enrolled
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	crs, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	crs, err := api.svc.Update(ctx.Request().Context(), ctxUsr, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) setStatus(ctx echo.Context) error {
	var data SetStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetStatusRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	crs, err := api.svc.SetStatus(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "setting course status")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addLesson(ctx echo.Context) error {
	var data course.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lsn, err := api.svc.AddLesson(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *courseApi) updateLesson(ctx echo.Context) error {
	orig, err := api.svc.GetLesson(ctx.Request().Context(), ctx.Param("lessonID"))
	if err != nil {
		return errors.Wrap(err, "finding lesson by ID")
	}

	var data course.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lsn, err := api.svc.UpdateLesson(ctx.Request().Context(), ctxUsr, ctx.Param("id"), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *courseApi) reorderLessons(ctx echo.Context) error {
	var data ReorderLessonsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderLessonsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	lessons, err := api.svc.ReorderLessons(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data.LessonIDs)
	if err != nil {
		return errors.Wrap(err, "reordering lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *courseApi) destroyLesson(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteLesson(ctx.Request().Context(), ctxUsr, ctx.Param("id"), ctx.Param("lessonID")); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enrs, err := api.enrollSvc.ListForCourse(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing course enrollments")
	}
	if enrs == nil {
		enrs = []enroll.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

type (
	SetStatusRequest struct {
		Status course.Status `json:"status" validate:"required,coursestatus"`
	}

	ReorderLessonsRequest struct {
		LessonIDs []string `json:"lesson_ids" validate:"required,min=1"`
	}
)

func (sr *SetStatusRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}

func (rr *ReorderLessonsRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
