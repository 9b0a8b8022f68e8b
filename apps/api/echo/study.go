package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
)

type studyApi struct {
	svc      *study.Service
	validate *validator.Validate
}

func registerStudyAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *study.Service, validate *validator.Validate) {
	api := studyApi{svc: svc, validate: validate}

	sg := g.Group("/study", authed...)
	sg.GET("/timer", api.timer)
	sg.POST("/timer/start", api.start)
	sg.POST("/timer/pause", api.pause)
	sg.POST("/timer/resume", api.resume)
	sg.POST("/timer/stop", api.stop)
	sg.GET("/sessions", api.querySessions)
	sg.POST("/sessions", api.logSession)
	sg.GET("/stats", api.stats)
}

type LogSessionResponse struct {
	Session  study.Session       `json:"session"`
	Unlocked []achievement.Badge `json:"unlocked"`
}

func (api *studyApi) timer(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Timer(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "getting timer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) start(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data study.StartTimer
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartTimer")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Start(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "starting timer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) pause(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Pause(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "pausing timer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) resume(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Resume(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "resuming timer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) stop(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Stop(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "stopping timer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) querySessions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter study.SessionFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []study.Session{})
	}

	sessions, err := api.svc.QuerySessions(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying study sessions")
	}
	if sessions == nil {
		sessions = []study.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *studyApi) logSession(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsStudent() {
		return errHttpForbidden
	}

	var data study.NewSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err = data.Validate(api.validate, study.NowFunc().UTC()); err != nil {
		return err
	}

	sess, unlocked, err := api.svc.Log(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "logging study session")
	}
	if unlocked == nil {
		unlocked = []achievement.Badge{}
	}
	return ctx.JSON(http.StatusCreated, LogSessionResponse{Session: sess, Unlocked: unlocked})
}

func (api *studyApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	days, err := queryInt(ctx, "days", study.DefaultStatsDays)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), usr, days)
	if err != nil {
		return errors.Wrap(err, "computing study stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
