package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/dashboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
)

// progressApi serves the leaderboard, the achievements and the dashboard.
type progressApi struct {
	leaderboard  *leaderboard.Service
	achievements *achievement.Service
	dashboard    *dashboard.Service
}

func registerProgressAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	lb *leaderboard.Service,
	achievements *achievement.Service,
	dash *dashboard.Service,
) {
	api := progressApi{leaderboard: lb, achievements: achievements, dashboard: dash}

	pg := g.Group("", authed...)
	pg.GET("/leaderboard", api.board)
	pg.GET("/achievements", api.queryAchievements)
	pg.POST("/achievements/evaluate", api.evaluateAchievements)
	pg.GET("/dashboard", api.getDashboard)
}

func (api *progressApi) board(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	period, err := leaderboard.ParsePeriod(ctx.QueryParam("period"))
	if err != nil {
		return err
	}
	limit, err := queryInt(ctx, limitParam, leaderboard.DefaultLimit)
	if err != nil {
		return err
	}

	board, err := api.leaderboard.Board(ctx.Request().Context(), usr, period, limit)
	if err != nil {
		return errors.Wrap(err, "getting leaderboard")
	}
	if board.Standings == nil {
		board.Standings = []leaderboard.Standing{}
	}
	return ctx.JSON(http.StatusOK, board)
}

// queryAchievements returns the student's badges; other users get the bare catalog.
func (api *progressApi) queryAchievements(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsStudent() {
		catalog := api.achievements.Catalog()
		badges := make([]achievement.Badge, 0, len(catalog))
		for _, def := range catalog {
			badges = append(badges, achievement.Badge{Definition: def})
		}
		return ctx.JSON(http.StatusOK, badges)
	}

	badges, err := api.achievements.List(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "listing achievements")
	}
	return ctx.JSON(http.StatusOK, badges)
}

func (api *progressApi) evaluateAchievements(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	unlocked, err := api.achievements.Evaluate(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "evaluating achievements")
	}
	return ctx.JSON(http.StatusOK, unlocked)
}

func (api *progressApi) getDashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	dash, err := api.dashboard.Get(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}
