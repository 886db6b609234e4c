package echoweb

import (
	"context"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

type (
	submissionPages struct {
		svc           *submission.Service
		assignmentSvc *assignment.Service
		userSvc       *user.Service
		validate      *validator.Validate
		translator    ut.Translator
	}

	submissionOptions struct {
		Assignments []assignment.Row
		Students    []user.User
		Statuses    []string
	}

	submissionListPage struct {
		Submissions []submission.Row
		Filter      submission.QueryFilter
		Options     submissionOptions
	}

	gradeOptions struct {
		Submission submission.Row
	}
)

var submissionStatuses = []string{submission.StatusGraded, submission.StatusPending}

func registerSubmissionPages(g *echo.Group, opts *Options) {
	p := submissionPages{
		svc:           opts.SubmissionSvc,
		assignmentSvc: opts.AssignmentSvc,
		userSvc:       opts.UserSvc,
		validate:      opts.Validate,
		translator:    opts.Translator,
	}

	g.GET("/submissions", p.query)
	g.POST("/submissions", p.create)
	g.GET("/submissions/new", p.newForm)

	dg := g.Group("/submissions/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("", p.retrieve)
	dg.POST("", p.grade)
	dg.GET("/edit", p.gradeForm)
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxSubmission(ctx echo.Context) (submission.Row, error) {
	row, ok := ctx.Get(objectKey).(submission.Row)
	if !ok {
		return submission.Row{}, errors.Wrap(errObjNotInCtx, "retrieving submission from context")
	}
	return row, nil
}

func (p *submissionPages) options(ctx context.Context) (submissionOptions, error) {
	opts := submissionOptions{Statuses: submissionStatuses}
	var err error
	if opts.Assignments, err = p.assignmentSvc.Query(ctx, assignment.QueryFilter{}); err != nil {
		return submissionOptions{}, errors.Wrap(err, "querying assignments")
	}
	if opts.Students, err = p.userSvc.QueryByRole(ctx, user.RoleStudent); err != nil {
		return submissionOptions{}, errors.Wrap(err, "querying students")
	}
	return opts, nil
}

func (p *submissionPages) query(ctx echo.Context) error {
	var filter submission.QueryFilter
	bindFilter(ctx, &filter)

	reqCtx := ctx.Request().Context()
	submissions, err := p.svc.Query(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	opts, err := p.options(reqCtx)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, "submissions_list", "Submissions", submissionListPage{
		Submissions: submissions,
		Filter:      filter,
		Options:     opts,
	})
}

func (p *submissionPages) renderNewForm(ctx echo.Context, data submission.NewSubmission, err error) error {
	opts, optsErr := p.options(ctx.Request().Context())
	if optsErr != nil {
		return optsErr
	}
	f := form{Action: "/submissions", Values: data, Options: opts}
	return renderForm(ctx, p.translator, "submissions_form", "Record Submission", f, err)
}

func (p *submissionPages) newForm(ctx echo.Context) error {
	data := submission.NewSubmission{
		AssignmentID: ctx.QueryParam("assignment"),
		StudentID:    ctx.QueryParam("student"),
	}
	return p.renderNewForm(ctx, data, nil)
}

func (p *submissionPages) create(ctx echo.Context) error {
	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	var sub submission.Submission
	if err == nil {
		sub, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		return p.renderNewForm(ctx, data, errors.Wrap(err, "creating submission"))
	}
	return redirectMessage(ctx, objPath("/submissions", sub.ID), "Submission recorded successfully.")
}

func (p *submissionPages) retrieve(ctx echo.Context) error {
	row, err := ctxSubmission(ctx)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, "submissions_detail", "Submission Details", row)
}

func (p *submissionPages) gradeForm(ctx echo.Context) error {
	row, err := ctxSubmission(ctx)
	if err != nil {
		return err
	}
	var data submission.UpdateSubmission
	if row.Grade.Valid {
		data.Grade = strconv.FormatFloat(row.Grade.Float64, 'f', 2, 64)
	}
	f := form{
		ID:      row.ID,
		Action:  objPath("/submissions", row.ID),
		Values:  data,
		Options: gradeOptions{Submission: row},
	}
	return renderForm(ctx, p.translator, "submissions_edit", "Grade Submission", f, nil)
}

func (p *submissionPages) grade(ctx echo.Context) error {
	row, err := ctxSubmission(ctx)
	if err != nil {
		return err
	}

	var data submission.UpdateSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubmission")
	}
	if err = data.Validate(p.validate); err == nil {
		err = p.svc.Grade(ctx.Request().Context(), row.ID, data)
	}
	if err != nil {
		f := form{
			ID:      row.ID,
			Action:  objPath("/submissions", row.ID),
			Values:  data,
			Options: gradeOptions{Submission: row},
		}
		return renderForm(ctx, p.translator, "submissions_edit", "Grade Submission", f, errors.Wrap(err, "grading submission"))
	}
	return redirectMessage(ctx, objPath("/submissions", row.ID), "Grade saved successfully.")
}

func (p *submissionPages) confirmDelete(ctx echo.Context) error {
	row, err := ctxSubmission(ctx)
	if err != nil {
		return err
	}
	return renderDelete(ctx, "submissions", deletePage{
		Kind:      "submission",
		Name:      row.StudentName + " for " + row.AssignmentTitle,
		Action:    objPath("/submissions", row.ID, "/delete"),
		CancelURL: objPath("/submissions", row.ID),
	})
}

func (p *submissionPages) destroy(ctx echo.Context) error {
	row, err := ctxSubmission(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/submissions", row.ID, "/delete"))
	}
	if err = p.svc.Delete(ctx.Request().Context(), row.ID); err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	return redirectMessage(ctx, "/submissions", "Submission deleted successfully.")
}
