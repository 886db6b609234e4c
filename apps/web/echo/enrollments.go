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
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/user"
)

type (
	enrollmentPages struct {
		svc        *enrollment.Service
		courseSvc  *course.Service
		userSvc    *user.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	enrollmentOptions struct {
		Students []user.User
		Courses  []course.Course
	}

	enrollmentListPage struct {
		Enrollments []enrollment.Row
		Filter      enrollment.QueryFilter
		Options     enrollmentOptions
	}

	// progressOptions is the edit page context: only the progress can change.
	progressOptions struct {
		Enrollment enrollment.Row
	}
)

func registerEnrollmentPages(g *echo.Group, opts *Options) {
	p := enrollmentPages{
		svc:        opts.EnrollmentSvc,
		courseSvc:  opts.CourseSvc,
		userSvc:    opts.UserSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	g.GET("/enrollments", p.query)
	g.POST("/enrollments", p.create)
	g.GET("/enrollments/new", p.newForm)

	dg := g.Group("/enrollments/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("", p.retrieve)
	dg.POST("", p.update)
	dg.GET("/edit", p.editForm)
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxEnrollment(ctx echo.Context) (enrollment.Row, error) {
	row, ok := ctx.Get(objectKey).(enrollment.Row)
	if !ok {
		return enrollment.Row{}, errors.Wrap(errObjNotInCtx, "retrieving enrollment from context")
	}
	return row, nil
}

func (p *enrollmentPages) options(ctx context.Context) (enrollmentOptions, error) {
	var (
		opts enrollmentOptions
		err  error
	)
	if opts.Students, err = p.userSvc.QueryByRole(ctx, user.RoleStudent); err != nil {
		return enrollmentOptions{}, errors.Wrap(err, "querying students")
	}
	if opts.Courses, err = p.courseSvc.QueryAll(ctx); err != nil {
		return enrollmentOptions{}, errors.Wrap(err, "querying courses")
	}
	return opts, nil
}

func (p *enrollmentPages) query(ctx echo.Context) error {
	var filter enrollment.QueryFilter
	bindFilter(ctx, &filter)

	reqCtx := ctx.Request().Context()
	enrollments, err := p.svc.Query(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	opts, err := p.options(reqCtx)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, "enrollments_list", "Enrollments", enrollmentListPage{
		Enrollments: enrollments,
		Filter:      filter,
		Options:     opts,
	})
}

func (p *enrollmentPages) renderNewForm(ctx echo.Context, data enrollment.NewEnrollment, err error) error {
	opts, optsErr := p.options(ctx.Request().Context())
	if optsErr != nil {
		return optsErr
	}
	f := form{Action: "/enrollments", Values: data, Options: opts}
	return renderForm(ctx, p.translator, "enrollments_form", "Enroll Student", f, err)
}

func (p *enrollmentPages) newForm(ctx echo.Context) error {
	data := enrollment.NewEnrollment{
		StudentID: ctx.QueryParam("student"),
		CourseID:  ctx.QueryParam("course"),
		Progress:  "0",
	}
	return p.renderNewForm(ctx, data, nil)
}

func (p *enrollmentPages) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	var e enrollment.Enrollment
	if err == nil {
		e, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		return p.renderNewForm(ctx, data, errors.Wrap(err, "creating enrollment"))
	}
	return redirectMessage(ctx, objPath("/enrollments", e.ID), "Student enrolled successfully.")
}

func (p *enrollmentPages) retrieve(ctx echo.Context) error {
	row, err := ctxEnrollment(ctx)
	if err != nil {
		return err
	}
	detail, err := p.svc.Detail(ctx.Request().Context(), row)
	if err != nil {
		return errors.Wrap(err, "loading enrollment detail")
	}
	return render(ctx, http.StatusOK, "enrollments_detail", "Enrollment Details", detail)
}

func (p *enrollmentPages) editForm(ctx echo.Context) error {
	row, err := ctxEnrollment(ctx)
	if err != nil {
		return err
	}
	f := form{
		ID:      row.ID,
		Action:  objPath("/enrollments", row.ID),
		Values:  enrollment.UpdateEnrollment{Progress: strconv.Itoa(row.Progress)},
		Options: progressOptions{Enrollment: row},
	}
	return renderForm(ctx, p.translator, "enrollments_edit", "Update Progress", f, nil)
}

func (p *enrollmentPages) update(ctx echo.Context) error {
	row, err := ctxEnrollment(ctx)
	if err != nil {
		return err
	}

	var data enrollment.UpdateEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollment")
	}
	if err = data.Validate(p.validate); err == nil {
		err = p.svc.UpdateProgress(ctx.Request().Context(), row.ID, data)
	}
	if err != nil {
		f := form{
			ID:      row.ID,
			Action:  objPath("/enrollments", row.ID),
			Values:  data,
			Options: progressOptions{Enrollment: row},
		}
		return renderForm(ctx, p.translator, "enrollments_edit", "Update Progress", f, errors.Wrap(err, "updating progress"))
	}
	return redirectMessage(ctx, objPath("/enrollments", row.ID), "Progress updated successfully.")
}

func (p *enrollmentPages) confirmDelete(ctx echo.Context) error {
	row, err := ctxEnrollment(ctx)
	if err != nil {
		return err
	}
	return renderDelete(ctx, "enrollments", deletePage{
		Kind:      "enrollment",
		Name:      row.StudentName + " in " + row.CourseTitle,
		Action:    objPath("/enrollments", row.ID, "/delete"),
		CancelURL: objPath("/enrollments", row.ID),
	})
}

func (p *enrollmentPages) destroy(ctx echo.Context) error {
	row, err := ctxEnrollment(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/enrollments", row.ID, "/delete"))
	}
	if err = p.svc.Delete(ctx.Request().Context(), row.ID); err != nil {
		if core.IsIntegrity(err) {
			return redirectError(ctx, objPath("/enrollments", row.ID), integrityMessage(err))
		}
		return errors.Wrap(err, "deleting enrollment")
	}
	return redirectMessage(ctx, "/enrollments", "Enrollment deleted successfully.")
}
