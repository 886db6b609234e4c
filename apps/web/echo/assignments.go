package echoweb

import (
	"context"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/course"
)

type (
	assignmentPages struct {
		svc        *assignment.Service
		courseSvc  *course.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	assignmentListPage struct {
		Assignments []assignment.Row
		Filter      assignment.QueryFilter
		Courses     []course.Course
	}

	assignmentOptions struct {
		Courses []course.Course
	}
)

func registerAssignmentPages(g *echo.Group, opts *Options) {
	p := assignmentPages{
		svc:        opts.AssignmentSvc,
		courseSvc:  opts.CourseSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	g.GET("/assignments", p.query)
	g.POST("/assignments", p.create)
	g.GET("/assignments/new", p.newForm)

	dg := g.Group("/assignments/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("", p.retrieve)
	dg.POST("", p.update)
	dg.GET("/edit", p.editForm)
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxAssignment(ctx echo.Context) (assignment.Row, error) {
	row, ok := ctx.Get(objectKey).(assignment.Row)
	if !ok {
		return assignment.Row{}, errors.Wrap(errObjNotInCtx, "retrieving assignment from context")
	}
	return row, nil
}

func (p *assignmentPages) query(ctx echo.Context) error {
	var filter assignment.QueryFilter
	bindFilter(ctx, &filter)

	reqCtx := ctx.Request().Context()
	assignments, err := p.svc.Query(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	courses, err := p.courseSvc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return render(ctx, http.StatusOK, "assignments_list", "Assignments", assignmentListPage{
		Assignments: assignments,
		Filter:      filter,
		Courses:     courses,
	})
}

func (p *assignmentPages) renderForm(ctx echo.Context, title string, f form, err error) error {
	courses, cErr := p.courseSvc.QueryAll(ctx.Request().Context())
	if cErr != nil {
		return errors.Wrap(cErr, "querying courses")
	}
	f.Options = assignmentOptions{Courses: courses}
	return renderForm(ctx, p.translator, "assignments_form", title, f, err)
}

func (p *assignmentPages) newForm(ctx echo.Context) error {
	data := assignment.NewAssignment{CourseID: ctx.QueryParam("course")}
	return p.renderForm(ctx, "Add Assignment", form{Action: "/assignments", Values: data}, nil)
}

func (p *assignmentPages) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	var a assignment.Assignment
	if err == nil {
		a, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		f := form{Action: "/assignments", Values: data}
		return p.renderForm(ctx, "Add Assignment", f, errors.Wrap(err, "creating assignment"))
	}
	return redirectMessage(ctx, objPath("/assignments", a.ID), "Assignment created successfully.")
}

func (p *assignmentPages) retrieve(ctx echo.Context) error {
	row, err := ctxAssignment(ctx)
	if err != nil {
		return err
	}
	detail, err := p.svc.Detail(ctx.Request().Context(), row)
	if err != nil {
		return errors.Wrap(err, "loading assignment detail")
	}
	return render(ctx, http.StatusOK, "assignments_detail", row.Title, detail)
}

func (p *assignmentPages) editForm(ctx echo.Context) error {
	row, err := ctxAssignment(ctx)
	if err != nil {
		return err
	}
	data := assignment.NewAssignment{
		CourseID:    strconv.Itoa(row.CourseID),
		Title:       row.Title,
		Description: row.Description.String,
		DueDate:     row.DueDate.Format(core.DateLayout),
	}
	f := form{ID: row.ID, Action: objPath("/assignments", row.ID), Values: data}
	return p.renderForm(ctx, "Edit Assignment", f, nil)
}

func (p *assignmentPages) update(ctx echo.Context) error {
	row, err := ctxAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	reqCtx := ctx.Request().Context()
	if err = data.Validate(reqCtx, p.validate, p.svc); err == nil {
		_, err = p.svc.Update(reqCtx, row.ID, data)
	}
	if err != nil {
		f := form{ID: row.ID, Action: objPath("/assignments", row.ID), Values: data}
		return p.renderForm(ctx, "Edit Assignment", f, errors.Wrap(err, "updating assignment"))
	}
	return redirectMessage(ctx, objPath("/assignments", row.ID), "Assignment updated successfully.")
}

func (p *assignmentPages) confirmDelete(ctx echo.Context) error {
	row, err := ctxAssignment(ctx)
	if err != nil {
		return err
	}
	page := deletePage{
		Kind:      "assignment",
		Name:      row.Title + " (" + row.CourseTitle + ")",
		Action:    objPath("/assignments", row.ID, "/delete"),
		CancelURL: objPath("/assignments", row.ID),
	}
	if row.SubmissionCount > 0 {
		page.Warning = "This assignment has submissions; the delete will be refused."
	}
	return renderDelete(ctx, "assignments", page)
}

func (p *assignmentPages) destroy(ctx echo.Context) error {
	row, err := ctxAssignment(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/assignments", row.ID, "/delete"))
	}
	if err = p.svc.Delete(ctx.Request().Context(), row.ID); err != nil {
		if core.IsIntegrity(err) {
			return redirectError(ctx, objPath("/assignments", row.ID), integrityMessage(err))
		}
		return errors.Wrap(err, "deleting assignment")
	}
	return redirectMessage(ctx, "/assignments", "Assignment deleted successfully.")
}
