// Package events carries notifications over NATS, so that the API can hand
// them off and a separate notifier process delivers them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
)

const connectTimeout = 5 * time.Second

// Connect opens a NATS connection named after the app.
func Connect(conf *core.Config, logger core.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(
		conf.Notification.NATSURL,
		nats.Name(conf.AppName),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn(fmt.Sprintf("events: disconnected from NATS: %v", err), err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("events: reconnected to NATS at " + c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to NATS at %s", conf.Notification.NATSURL)
	}
	return conn, nil
}

// Publisher is a notification.Notifier publishing to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

var _ notification.Notifier = (*Publisher)(nil)

func NewPublisher(conn *nats.Conn, subject string) *Publisher {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conn, "conn"),
		vala.StringNotEmpty(subject, "subject"),
	).CheckAndPanic()
	return &Publisher{conn: conn, subject: subject}
}

func (p *Publisher) Notify(ctx context.Context, notif notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(notif)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.conn.Publish(p.subject, data), "publishing to %s", p.subject)
}

// Consumer delivers notifications received on a NATS subject.
// Consumers sharing a queue group split the load.
type Consumer struct {
	conn    *nats.Conn
	next    notification.Notifier
	logger  core.Logger
	subject string
	group   string
	sub     *nats.Subscription
}

func NewConsumer(conn *nats.Conn, next notification.Notifier, logger core.Logger, conf core.NotificationConfig) *Consumer {
	vala.BeginValidation().Validate(
		vala.IsNotNil(next, "next"),
		vala.IsNotNil(logger, "logger"),
		vala.StringNotEmpty(conf.Subject, "subject"),
	).CheckAndPanic()
	return &Consumer{
		conn:    conn,
		next:    next,
		logger:  logger,
		subject: conf.Subject,
		group:   conf.QueueGroup,
	}
}

func (c *Consumer) Start() error {
	if c.conn == nil {
		return errors.New("consumer has no NATS connection")
	}
	sub, err := c.conn.QueueSubscribe(c.subject, c.group, c.Handle)
	if err != nil {
		return errors.Wrapf(err, "subscribing to %s", c.subject)
	}
	c.sub = sub
	return nil
}

// Stop drains the subscription, letting in-flight messages finish.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Drain()
}

// Handle delivers a single message. Bad messages are logged and dropped.
func (c *Consumer) Handle(msg *nats.Msg) {
	notif, err := Decode(msg.Data)
	if err != nil {
		c.logger.Error(fmt.Sprintf("events.Consumer.Handle: %v", err), err)
		return
	}
	if err = c.next.Notify(context.Background(), notif); err != nil {
		c.logger.Error(fmt.Sprintf("events.Consumer.Handle(%s): %v", notif.Kind, err), err)
	}
}

func Encode(notif notification.Notification) ([]byte, error) {
	data, err := json.Marshal(notif)
	return data, errors.Wrap(err, "encoding notification")
}

func Decode(data []byte) (notification.Notification, error) {
	var notif notification.Notification
	if err := json.Unmarshal(data, &notif); err != nil {
		return notification.Notification{}, errors.Wrap(err, "decoding notification")
	}
	if notif.Kind == "" {
		return notification.Notification{}, errors.New("decoding notification: missing kind")
	}
	return notif, nil
}
