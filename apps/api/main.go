package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers the /debug/pprof handlers

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	container "github.com/karthik768990/EduFlow-Learning-Platform/apps/api/di/dig"
	echoapi "github.com/karthik768990/EduFlow-Learning-Platform/apps/api/echo"
	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
	appfs "github.com/karthik768990/EduFlow-Learning-Platform/fs"
	metricsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/metrics"
	"github.com/karthik768990/EduFlow-Learning-Platform/services/scheduler"
)

type appParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	DBLogger      core.Logger `name:"dbLogger"`
	DB            *sqlx.DB
	NATS          *nats.Conn
	Validate      *validator.Validate
	Translator    ut.Translator
	Registry      *prometheus.Registry
	Scheduler     *scheduler.Scheduler
	AssignmentSvc *assignment.Service
	Server        *echoapi.Server
}

func main() {
	c := container.New()
	must(c.Invoke(run))
}

func run(p appParams) {
	conf, logger := p.Conf, p.Logger

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

	core.InitValidators(p.Validate, p.Translator)
	user.InitValidators(p.Validate, p.Translator)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger, conf.TestMode)
	user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)

	defer func() {
		if err := p.DB.Close(); err != nil {
			p.DBLogger.Fatal("Failed to close", err)
		}
	}()
	if p.NATS != nil {
		defer p.NATS.Close()
	}
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.DefaultServeMux.Handle("/metrics", metricsvc.Handler(p.Registry))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Reminders

	if err := p.Scheduler.ScheduleReminders(
		p.AssignmentSvc, conf.Notification.ReminderInterval, conf.Notification.ReminderWindow,
	); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling reminders: %v", err), err)
	}
	p.Scheduler.Start()
	defer func() {
		if err := p.Scheduler.Stop(); err != nil {
			logger.Error(fmt.Sprintf("stopping scheduler: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		logger.Info("API listening on " + conf.Server.Address)
		p.Server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-p.Server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-p.Server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := p.Server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
