// Package notification is the single entry point for user notifications.
// Notifications are rendered with the email templates named after their Kind.
package notification

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

type Kind string

const (
	KindAssignmentCreated Kind = "assignment_created"
	KindAssignmentDue     Kind = "assignment_due"
	KindDoubtAsked        Kind = "doubt_asked"
	KindDoubtReplied      Kind = "doubt_replied"
)

var subjects = map[Kind]string{
	KindAssignmentCreated: "New assignment",
	KindAssignmentDue:     "Assignment due soon",
	KindDoubtAsked:        "New doubt on your assignment",
	KindDoubtReplied:      "New reply to a doubt",
}

var ErrUnknownKind = errors.New("unknown notification kind")

// Notification is delivered to every recipient separately.
// Data must be JSON serializable; each message gets an extra "recipient" key holding the recipient's name.
type Notification struct {
	Kind       Kind                   `json:"kind"`
	Recipients []mail.Address         `json:"recipients"`
	Data       map[string]interface{} `json:"data"`
}

// Notifier delivers notifications, directly or through a message bus.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// MailNotifier sends notifications as templated emails.
type MailNotifier struct {
	mailSvc core.EmailService
}

var _ Notifier = (*MailNotifier)(nil)

func NewMailNotifier(mailSvc core.EmailService) *MailNotifier {
	return &MailNotifier{mailSvc: mailSvc}
}

func (n *MailNotifier) Notify(_ context.Context, notif Notification) error {
	messages, err := Messages(notif)
	if err != nil {
		return err
	}
	if len(messages) > 0 {
		n.mailSvc.SendMessages(messages...)
	}
	return nil
}

// Messages builds one email per recipient.
func Messages(notif Notification) ([]*core.EmailMessage, error) {
	subject, ok := subjects[notif.Kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", notif.Kind)
	}

	messages := make([]*core.EmailMessage, 0, len(notif.Recipients))
	for _, to := range notif.Recipients {
		if to.Address == "" {
			continue
		}
		data := make(map[string]interface{}, len(notif.Data)+1)
		for k, v := range notif.Data {
			data[k] = v
		}
		data["recipient"] = to.Name

		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{to},
			Subject:      subject,
			TemplateName: string(notif.Kind),
			TemplateData: data,
		})
	}
	return messages, nil
}

// Recipient returns the mail.Address of a user-like value.
func Recipient(name, email string) mail.Address {
	return mail.Address{Name: name, Address: email}
}
