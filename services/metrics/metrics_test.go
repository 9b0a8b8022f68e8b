package metricsvc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	reg, err := NewRegistry(c)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_Middleware(t *testing.T) {
	c := NewCollector()

	app := echo.New()
	app.Use(c.Middleware())
	app.GET("/items/:id", func(ctx echo.Context) error { return ctx.NoContent(http.StatusNoContent) })
	app.GET("/teapot", func(echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	for _, path := range []string{"/items/1", "/items/2", "/teapot"} {
		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, c)
	assert.Contains(t, body, `eduflow_http_requests_total{method="GET",route="/items/:id",status="204"} 2`)
	assert.Contains(t, body, `eduflow_http_requests_total{method="GET",route="/teapot",status="418"} 1`)
	assert.Contains(t, body, `eduflow_http_request_duration_seconds_count{method="GET",route="/items/:id"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

type notifierMock struct{ err error }

func (n notifierMock) Notify(context.Context, notification.Notification) error { return n.err }

type evaluatorMock struct{ badges []achievement.Badge }

func (e evaluatorMock) Evaluate(context.Context, user.User) ([]achievement.Badge, error) {
	return e.badges, nil
}

func TestCollector_domain(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	ok := c.InstrumentNotifier(notifierMock{}, "direct")
	failing := c.InstrumentNotifier(notifierMock{err: errors.New("boom")}, "nats")
	require.NoError(t, ok.Notify(ctx, notification.Notification{Kind: notification.KindAssignmentDue}))
	require.NoError(t, ok.Notify(ctx, notification.Notification{Kind: notification.KindAssignmentDue}))
	assert.Error(t, failing.Notify(ctx, notification.Notification{Kind: notification.KindDoubtAsked}))

	eval := c.InstrumentEvaluator(evaluatorMock{badges: []achievement.Badge{
		{Definition: achievement.Definition{Code: "first_submission"}},
		{Definition: achievement.Definition{Code: "first_session"}},
	}})
	badges, err := eval.Evaluate(ctx, user.User{})
	require.NoError(t, err)
	assert.Len(t, badges, 2)

	body := scrape(t, c)
	assert.Contains(t, body, `eduflow_notifications_total{kind="assignment_due",result="ok",transport="direct"} 2`)
	assert.Contains(t, body, `eduflow_notifications_total{kind="doubt_asked",result="error",transport="nats"} 1`)
	assert.Contains(t, body, `eduflow_achievements_unlocked_total{code="first_submission"} 1`)
	assert.Contains(t, body, `eduflow_achievements_unlocked_total{code="first_session"} 1`)
}
