package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
)

type assignmentApi struct {
	svc         *assignment.Service
	submissions *submission.Service
	validate    *validator.Validate
}

func registerAssignmentAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *assignment.Service,
	submissions *submission.Service,
	validate *validator.Validate,
) {
	api := assignmentApi{
		svc:         svc,
		submissions: submissions,
		validate:    validate,
	}

	ag := g.Group("/assignments", authed...)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.GET("/:id/submissions", api.querySubmissions)
	ag.PUT("/:id/submission", api.submit)
	ag.DELETE("/:id/submission", api.withdraw)

	sg := g.Group("/submissions", authed...)
	sg.GET("", api.queryOwnSubmissions)
}

type (
	AssignmentDetail struct {
		assignment.Assignment
		// Submission is the context student's own submission, if any.
		Submission *submission.Submission `json:"submission,omitempty"`
	}

	SubmitResponse struct {
		Submission submission.Submission `json:"submission"`
		Unlocked   []achievement.Badge   `json:"unlocked"`
	}
)

func (api *assignmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(assignment.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}
	filter.Clean()
	if val := ctx.QueryParam("submitted"); val != "" {
		submitted, err := strconv.ParseBool(val)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "submitted", Error: "must be a boolean"})
		}
		filter.Submitted = &submitted
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, assignment.OrderingFields...)

	assignments, err := api.svc.Query(ctx.Request().Context(), usr, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.CanTeach() {
		return errHttpForbidden
	}

	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()

	a, err := api.svc.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	detail := AssignmentDetail{Assignment: a}
	if usr.IsStudent() {
		sub, err := api.submissions.GetOwn(reqCtx, usr, a.ID)
		switch {
		case err == nil:
			detail.Submission = &sub
		case !core.IsNotFound(err):
			return errors.Wrap(err, "getting own submission")
		}
		submitted := detail.Submission != nil
		detail.Submitted = &submitted
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	subs, err := api.submissions.QueryByAssignment(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsStudent() {
		return errHttpForbidden
	}

	var data submission.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, unlocked, err := api.submissions.Submit(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	if unlocked == nil {
		unlocked = []achievement.Badge{}
	}
	return ctx.JSON(http.StatusOK, SubmitResponse{Submission: sub, Unlocked: unlocked})
}

func (api *assignmentApi) withdraw(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.submissions.Withdraw(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "withdrawing submission")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) queryOwnSubmissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsStudent() {
		return errHttpForbidden
	}
	subs, err := api.submissions.QueryOwn(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying own submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}
