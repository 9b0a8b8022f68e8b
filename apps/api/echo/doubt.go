package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
)

type doubtApi struct {
	svc      *doubt.Service
	validate *validator.Validate
}

func registerDoubtAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *doubt.Service, validate *validator.Validate) {
	api := doubtApi{svc: svc, validate: validate}

	dg := g.Group("/doubts", authed...)
	dg.GET("", api.query)
	dg.POST("", api.ask)
	dg.GET("/:id", api.retrieve)
	dg.DELETE("/:id", api.destroy)
	dg.POST("/:id/replies", api.reply)
	dg.PUT("/:id/resolve", api.resolve)
	dg.DELETE("/:id/resolve", api.reopen)
}

func (api *doubtApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter doubt.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []doubt.Doubt{})
	}

	doubts, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying doubts")
	}
	if doubts == nil {
		doubts = []doubt.Doubt{}
	}
	return ctx.JSON(http.StatusOK, doubts)
}

func (api *doubtApi) ask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsStudent() {
		return errHttpForbidden
	}

	var data doubt.NewDoubt
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDoubt")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Ask(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "asking doubt")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *doubtApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	d, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting doubt")
	}
	if d.Replies == nil {
		d.Replies = []doubt.Reply{}
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *doubtApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting doubt")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *doubtApi) reply(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data doubt.NewReply
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReply")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Reply(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replying to doubt")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *doubtApi) resolve(ctx echo.Context) error {
	return api.setResolved(ctx, true)
}

func (api *doubtApi) reopen(ctx echo.Context) error {
	return api.setResolved(ctx, false)
}

func (api *doubtApi) setResolved(ctx echo.Context, resolved bool) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	d, err := api.svc.SetResolved(ctx.Request().Context(), usr, ctx.Param("id"), resolved)
	if err != nil {
		return errors.Wrap(err, "setting doubt resolution")
	}
	return ctx.JSON(http.StatusOK, d)
}
