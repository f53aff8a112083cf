package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/user"
)

type paymentApi struct {
	svc      payment.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc payment.ServiceInterface, userSvc user.ServiceInterface, validate *validator.Validate) {
	api := paymentApi{
		svc:      svc,
		userSvc:  userSvc,
		validate: validate,
	}

	pg := g.Group("/payments", jwt)
	pg.POST("/checkout", api.checkout)
	pg.GET("/mine", api.listMine)
	pg.GET("", api.query, adminMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id/status", api.setStatus, adminMiddleware())
}

// Handlers

func (api *paymentApi) checkout(ctx echo.Context) error {
	var data CheckoutRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckoutRequest")
	}
	if data.CourseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "course_id is required")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	pmt, err := api.svc.Checkout(ctx.Request().Context(), ctxUsr, data.CourseID)
	if err != nil {
		return errors.Wrap(err, "opening payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *paymentApi) listMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	pmts, err := api.svc.Query(ctx.Request().Context(), &payment.QueryFilter{UserID: ctxUsr.ID})
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if pmts == nil {
		pmts = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

func (api *paymentApi) query(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	pmts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if pmts == nil {
		pmts = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

// retrieve returns a payment to its owner or to an admin.
func (api *paymentApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	pmt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding payment by ID")
	}
	if pmt.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) setStatus(ctx echo.Context) error {
	var data payment.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	pmt, err := api.svc.SetStatus(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting payment status")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

type CheckoutRequest struct {
	CourseID string `json:"course_id"`
}
