// Package container assembles the dependencies of the API app.
package container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	echoapi "github.com/karthik768990/EduFlow-Learning-Platform/apps/api/echo"
	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/dashboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
	appfs "github.com/karthik768990/EduFlow-Learning-Platform/fs"
	emailsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/email"
	"github.com/karthik768990/EduFlow-Learning-Platform/services/events"
	logsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/logger"
	metricsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/metrics"
	"github.com/karthik768990/EduFlow-Learning-Platform/services/scheduler"
	"github.com/karthik768990/EduFlow-Learning-Platform/storage/database"
	boiledrepos "github.com/karthik768990/EduFlow-Learning-Platform/storage/database/sqlboiler"
	sqlxrepos "github.com/karthik768990/EduFlow-Learning-Platform/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("API : "), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("DB : "), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newDBExecutor(db *sqlx.DB) core.DBExecutor {
	return db
}

func newRegistry(collector *metricsvc.Collector) (*prometheus.Registry, error) {
	return metricsvc.NewRegistry(collector)
}

// newNATSConn returns a nil connection when notifications are sent directly.
func newNATSConn(conf *core.Config, logger core.Logger) (*nats.Conn, error) {
	if conf.Notification.Transport != "nats" {
		return nil, nil
	}
	return events.Connect(conf, logger)
}

func newNotifier(conf *core.Config, conn *nats.Conn, mailSvc core.EmailService, collector *metricsvc.Collector) notification.Notifier {
	if conn != nil {
		return collector.InstrumentNotifier(events.NewPublisher(conn, conf.Notification.Subject), "nats")
	}
	return collector.InstrumentNotifier(notification.NewMailNotifier(mailSvc), "direct")
}

func newCatalog() (achievement.Catalog, error) {
	return achievement.LoadCatalog(appfs.FS, appfs.AchievementCatalog)
}

func newEvaluator(svc *achievement.Service, collector *metricsvc.Collector) metricsvc.Evaluator {
	return collector.InstrumentEvaluator(svc)
}

func newSubmissionService(
	repo submission.Repository,
	assignments *assignment.Service,
	evaluator metricsvc.Evaluator,
	logger core.Logger,
) *submission.Service {
	return submission.NewService(repo, assignments, evaluator, logger)
}

func newDoubtService(
	repo doubt.Repository,
	assignments *assignment.Service,
	users user.ServiceInterface,
	notifier notification.Notifier,
	logger core.Logger,
) *doubt.Service {
	return doubt.NewService(repo, assignments, users, notifier, logger)
}

func newStudyService(
	repo study.Repository,
	stats study.StatsRepository,
	evaluator metricsvc.Evaluator,
	logger core.Logger,
	conf *core.Config,
) *study.Service {
	return study.NewService(repo, stats, evaluator, logger, conf.Pomodoro)
}

func newLeaderboardService(repo leaderboard.Repository, conf *core.Config) *leaderboard.Service {
	return leaderboard.NewService(repo, conf.Leaderboard)
}

func newDashboardService(
	assignments *assignment.Service,
	submissions *submission.Service,
	doubts *doubt.Service,
	studySvc *study.Service,
	board *leaderboard.Service,
	achievements *achievement.Service,
) *dashboard.Service {
	return dashboard.NewService(assignments, submissions, doubts, studySvc, board, achievements)
}

type serverParams struct {
	dig.In

	Conf           *core.Config
	Logger         core.Logger
	Validate       *validator.Validate
	Translator     ut.Translator
	Collector      *metricsvc.Collector
	UserSvc        user.ServiceInterface
	AssignmentSvc  *assignment.Service
	SubmissionSvc  *submission.Service
	DoubtSvc       *doubt.Service
	StudySvc       *study.Service
	LeaderboardSvc *leaderboard.Service
	AchievementSvc *achievement.Service
	DashboardSvc   *dashboard.Service
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		Middlewares:    []echo.MiddlewareFunc{p.Collector.Middleware()},
		UserSvc:        p.UserSvc,
		AssignmentSvc:  p.AssignmentSvc,
		SubmissionSvc:  p.SubmissionSvc,
		DoubtSvc:       p.DoubtSvc,
		StudySvc:       p.StudySvc,
		LeaderboardSvc: p.LeaderboardSvc,
		AchievementSvc: p.AchievementSvc,
		DashboardSvc:   p.DashboardSvc,
	})
}

func newScheduler(logger core.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	// config & logging
	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(metricsvc.NewCollector))
	must(c.Provide(newRegistry))

	// storage
	must(c.Provide(newDB))
	must(c.Provide(newDBExecutor))
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewAssignmentRepository, dig.As(new(assignment.Repository))))
	must(c.Provide(sqlxrepos.NewSubmissionRepository, dig.As(new(submission.Repository))))
	must(c.Provide(sqlxrepos.NewDoubtRepository, dig.As(new(doubt.Repository))))
	must(c.Provide(sqlxrepos.NewStudyRepository, dig.As(new(study.Repository))))
	must(c.Provide(sqlxrepos.NewAchievementRepository, dig.As(new(achievement.Repository))))
	must(c.Provide(
		boiledrepos.NewReportRepository,
		dig.As(new(leaderboard.Repository), new(achievement.CounterSource), new(study.StatsRepository)),
	))

	// notifications
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newNATSConn))
	must(c.Provide(newNotifier))
	must(c.Provide(newScheduler))

	// services
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface), new(assignment.StudentLister))))
	must(c.Provide(assignment.NewService))
	must(c.Provide(newCatalog))
	must(c.Provide(achievement.NewService))
	must(c.Provide(newEvaluator))
	must(c.Provide(newSubmissionService))
	must(c.Provide(newDoubtService))
	must(c.Provide(newStudyService))
	must(c.Provide(newLeaderboardService))
	must(c.Provide(newDashboardService))

	// transport
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
