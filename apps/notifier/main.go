// Command notifier delivers the notifications the API publishes on NATS.
// Run several instances to split the load: they share a queue group.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	appfs "github.com/karthik768990/EduFlow-Learning-Platform/fs"
	emailsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/email"
	"github.com/karthik768990/EduFlow-Learning-Platform/services/events"
	logsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("NOTIFIER : "), conf)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	if err := run(conf, logger); err != nil {
		logger.Error(fmt.Sprintf("notifier: %v", err), err)
		logger.Close()
		os.Exit(1)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	logger.Info(fmt.Sprintf("Notifier initializing : version %q", conf.Build))
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger, conf.TestMode)

	conn, err := events.Connect(conf, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	mailer := notification.NewMailNotifier(emailsvc.NewService(conf, logger))
	consumer := events.NewConsumer(conn, mailer, logger, conf.Notification)
	if err = consumer.Start(); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Notifier listening on %q (queue %q)", conf.Notification.Subject, conf.Notification.QueueGroup))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("Notifier stopping : %v", sig))

	return consumer.Stop()
}
