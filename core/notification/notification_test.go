package notification

import (
	"context"
	"net/mail"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

func TestMessages(t *testing.T) {
	n := Notification{
		Kind: KindDoubtReplied,
		Recipients: []mail.Address{
			Recipient("Ann", "ann@test.cd"),
			{Name: "No email"},
			Recipient("Bob", "bob@test.cd"),
		},
		Data: map[string]interface{}{"title": "Essay"},
	}

	msgs, err := Messages(n)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for i, name := range []string{"Ann", "Bob"} {
		assert.Equal(t, name, msgs[i].To[0].Name)
		assert.Equal(t, "doubt_replied", msgs[i].TemplateName)
		assert.Equal(t, "New reply to a doubt", msgs[i].Subject)
		data, ok := msgs[i].TemplateData.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, name, data["recipient"])
		assert.Equal(t, "Essay", data["title"])
	}
	_, ok := n.Data["recipient"]
	assert.False(t, ok, "notification data must not be modified")

	_, err = Messages(Notification{Kind: "birthday"})
	assert.Equal(t, ErrUnknownKind, errors.Cause(err))
}

type recordingMailer struct {
	sent []*core.EmailMessage
}

func (m *recordingMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func TestMailNotifier_Notify(t *testing.T) {
	mailer := new(recordingMailer)
	notifier := NewMailNotifier(mailer)

	err := notifier.Notify(context.Background(), Notification{
		Kind:       KindAssignmentDue,
		Recipients: []mail.Address{Recipient("Ann", "ann@test.cd")},
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "assignment_due", mailer.sent[0].TemplateName)

	require.NoError(t, notifier.Notify(context.Background(), Notification{Kind: KindAssignmentDue}))
	assert.Len(t, mailer.sent, 1)
}
