package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/progress"
	"github.com/darisacademy/daris/core/stats"
	"github.com/darisacademy/daris/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger         core.Logger
		Validate       *validator.Validate
		SignalShutdown func()

		UserSvc     user.ServiceInterface
		CourseSvc   course.ServiceInterface
		EnrollSvc   enroll.ServiceInterface
		ProgressSvc progress.ServiceInterface
		PaymentSvc  payment.ServiceInterface
		StatsSvc    stats.ServiceInterface
		MediaSvc    core.MediaService
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	signalShutdown := s.opts.SignalShutdown
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.Validate)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc, s.opts.UserSvc, s.opts.EnrollSvc, s.opts.Validate)
	registerEnrollmentAPI(v1, jwt, s.opts.EnrollSvc, s.opts.UserSvc)
	registerProgressAPI(v1, jwt, s.opts.ProgressSvc, s.opts.UserSvc, s.opts.Validate)
	registerPaymentAPI(v1, jwt, s.opts.PaymentSvc, s.opts.UserSvc, s.opts.Validate)
	registerStatsAPI(v1, jwt, s.opts.StatsSvc)
	registerMediaAPI(v1, jwt, s.opts.MediaSvc, s.opts.UserSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Daris API!")
}
