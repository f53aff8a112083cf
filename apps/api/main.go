package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/darisacademy/daris/apps/api/echo"
	"github.com/darisacademy/daris/core"
	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/progress"
	"github.com/darisacademy/daris/core/stats"
	"github.com/darisacademy/daris/core/user"
	appfs "github.com/darisacademy/daris/fs"
	emailsvc "github.com/darisacademy/daris/services/email"
	logsvc "github.com/darisacademy/daris/services/logger"
	mediasvc "github.com/darisacademy/daris/services/media"
	"github.com/darisacademy/daris/storage/database"
	"github.com/darisacademy/daris/storage/database/sqlxrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var mediaSvc core.MediaService
	if conf.Debug {
		mediaSvc = mediasvc.NewDummyService()
	} else {
		mediaSvc, err = mediasvc.NewGCSService(context.Background(), conf.Media, logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up media service: %v", err), err)
		}
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	crsSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	pmtSvc := payment.NewService(sqlxrepos.NewPaymentRepository(db), crsSvc, mailSvc)
	enrRepo := sqlxrepos.NewEnrollmentRepository(db)
	enrSvc := enroll.NewService(enrRepo, crsSvc, pmtSvc, mailSvc)
	prgSvc := progress.NewService(sqlxrepos.NewProgressRepository(db), crsSvc, enrRepo)
	statsSvc := stats.NewService(sqlxrepos.NewStatsRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)

	core.SetEmailTemplatesFS(appfs.FS)
	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Address(),
		Logger:         logger,
		Validate:       validate,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },

		UserSvc:     usrSvc,
		CourseSvc:   crsSvc,
		EnrollSvc:   enrSvc,
		ProgressSvc: prgSvc,
		PaymentSvc:  pmtSvc,
		StatsSvc:    statsSvc,
		MediaSvc:    mediaSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
