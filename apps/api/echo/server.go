package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/dashboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

type Options struct {
	Conf           *core.Config
	Logger         core.Logger
	Validate       *validator.Validate
	Translator     ut.Translator
	DisableReqLogs bool
	// Middlewares run before routing, eg. metrics.
	Middlewares []echo.MiddlewareFunc

	UserSvc        user.ServiceInterface
	AssignmentSvc  *assignment.Service
	SubmissionSvc  *submission.Service
	DoubtSvc       *doubt.Service
	StudySvc       *study.Service
	LeaderboardSvc *leaderboard.Service
	AchievementSvc *achievement.Service
	DashboardSvc   *dashboard.Service
}

type Server struct {
	*http.Server
	app      *echo.Echo
	opts     *Options
	auth     *Authenticator
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(opts *Options) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(opts.Conf, "Conf"),
		vala.IsNotNil(opts.Logger, "Logger"),
		vala.IsNotNil(opts.Validate, "Validate"),
		vala.IsNotNil(opts.Translator, "Translator"),
		vala.IsNotNil(opts.UserSvc, "UserSvc"),
		vala.IsNotNil(opts.AssignmentSvc, "AssignmentSvc"),
		vala.IsNotNil(opts.SubmissionSvc, "SubmissionSvc"),
		vala.IsNotNil(opts.DoubtSvc, "DoubtSvc"),
		vala.IsNotNil(opts.StudySvc, "StudySvc"),
		vala.IsNotNil(opts.LeaderboardSvc, "LeaderboardSvc"),
		vala.IsNotNil(opts.AchievementSvc, "AchievementSvc"),
		vala.IsNotNil(opts.DashboardSvc, "DashboardSvc"),
	).CheckAndPanic()

	conf := opts.Conf
	s := &Server{
		app:      echo.New(),
		opts:     opts,
		auth:     NewAuthenticator(conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.Server = &http.Server{
		Addr:         conf.Server.Address,
		Handler:      s.app,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	for _, mw := range s.opts.Middlewares {
		s.app.Use(mw)
	}
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.FrontendBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	authed := []echo.MiddlewareFunc{s.auth.Middleware(), contextUserMiddleware(s.opts.UserSvc)}

	registerUserAPI(g, authed, s.opts.UserSvc, s.auth, s.opts.Validate)
	registerAssignmentAPI(g, authed, s.opts.AssignmentSvc, s.opts.SubmissionSvc, s.opts.Validate)
	registerDoubtAPI(g, authed, s.opts.DoubtSvc, s.opts.Validate)
	registerStudyAPI(g, authed, s.opts.StudySvc, s.opts.Validate)
	registerProgressAPI(g, authed, s.opts.LeaderboardSvc, s.opts.AchievementSvc, s.opts.DashboardSvc)
}

// Start listens until the server is shut down; unexpected errors are sent to Errors().
func (s *Server) Start() {
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the app to gracefully stop.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

// Stop gracefully shuts the server down, forcing it when ctx expires first.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.Shutdown(ctx); err != nil {
		if cErr := s.Close(); cErr != nil {
			return cErr
		}
		return err
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Authenticator signs and checks the tokens of this server.
func (s *Server) Authenticator() *Authenticator {
	return s.auth
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}
