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
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/user"
)

type (
	coursePages struct {
		svc         *course.Service
		categorySvc *category.Service
		userSvc     *user.Service
		validate    *validator.Validate
		translator  ut.Translator
	}

	courseOptions struct {
		Categories  []category.Category
		Instructors []user.User
	}

	courseListPage struct {
		Courses []course.Row
		Filter  course.QueryFilter
		Stats   course.ListStats
		Options courseOptions
	}
)

func registerCoursePages(g *echo.Group, opts *Options) {
	p := coursePages{
		svc:         opts.CourseSvc,
		categorySvc: opts.CategorySvc,
		userSvc:     opts.UserSvc,
		validate:    opts.Validate,
		translator:  opts.Translator,
	}

	g.GET("/courses", p.query)
	g.POST("/courses", p.create)
	g.GET("/courses/new", p.newForm)

	dg := g.Group("/courses/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("", p.retrieve)
	dg.POST("", p.update)
	dg.GET("/edit", p.editForm)
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxCourse(ctx echo.Context) (course.Row, error) {
	row, ok := ctx.Get(objectKey).(course.Row)
	if !ok {
		return course.Row{}, errors.Wrap(errObjNotInCtx, "retrieving course from context")
	}
	return row, nil
}

func (p *coursePages) options(ctx context.Context) (courseOptions, error) {
	var (
		opts courseOptions
		err  error
	)
	if opts.Categories, err = p.categorySvc.QueryAll(ctx); err != nil {
		return courseOptions{}, errors.Wrap(err, "querying categories")
	}
	if opts.Instructors, err = p.userSvc.QueryByRole(ctx, user.RoleInstructor); err != nil {
		return courseOptions{}, errors.Wrap(err, "querying instructors")
	}
	return opts, nil
}

func (p *coursePages) query(ctx echo.Context) error {
	var filter course.QueryFilter
	bindFilter(ctx, &filter)

	reqCtx := ctx.Request().Context()
	courses, err := p.svc.Query(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	stats, err := p.svc.ListStats(reqCtx)
	if err != nil {
		return errors.Wrap(err, "loading course stats")
	}
	opts, err := p.options(reqCtx)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, "courses_list", "Courses", courseListPage{
		Courses: courses,
		Filter:  filter,
		Stats:   stats,
		Options: opts,
	})
}

func (p *coursePages) renderForm(ctx echo.Context, title string, f form, err error) error {
	opts, optsErr := p.options(ctx.Request().Context())
	if optsErr != nil {
		return optsErr
	}
	f.Options = opts
	return renderForm(ctx, p.translator, "courses_form", title, f, err)
}

func (p *coursePages) newForm(ctx echo.Context) error {
	data := course.NewCourse{
		CategoryID:   ctx.QueryParam("category"),
		InstructorID: ctx.QueryParam("instructor"),
	}
	return p.renderForm(ctx, "Add Course", form{Action: "/courses", Values: data}, nil)
}

func (p *coursePages) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	var c course.Course
	if err == nil {
		c, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		return p.renderForm(ctx, "Add Course", form{Action: "/courses", Values: data}, errors.Wrap(err, "creating course"))
	}
	return redirectMessage(ctx, objPath("/courses", c.ID), "Course created successfully.")
}

func (p *coursePages) retrieve(ctx echo.Context) error {
	row, err := ctxCourse(ctx)
	if err != nil {
		return err
	}
	detail, err := p.svc.Detail(ctx.Request().Context(), row)
	if err != nil {
		return errors.Wrap(err, "loading course detail")
	}
	return render(ctx, http.StatusOK, "courses_detail", row.Title, detail)
}

func (p *coursePages) editForm(ctx echo.Context) error {
	row, err := ctxCourse(ctx)
	if err != nil {
		return err
	}
	data := course.NewCourse{
		Title:        row.Title,
		Description:  row.Description.String,
		Price:        strconv.FormatFloat(row.Price, 'f', 2, 64),
		CategoryID:   strconv.Itoa(row.CategoryID),
		InstructorID: strconv.Itoa(row.InstructorID),
	}
	return p.renderForm(ctx, "Edit Course", form{ID: row.ID, Action: objPath("/courses", row.ID), Values: data}, nil)
}

func (p *coursePages) update(ctx echo.Context) error {
	row, err := ctxCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	reqCtx := ctx.Request().Context()
	if err = data.Validate(reqCtx, p.validate, p.svc); err == nil {
		_, err = p.svc.Update(reqCtx, row.ID, data)
	}
	if err != nil {
		f := form{ID: row.ID, Action: objPath("/courses", row.ID), Values: data}
		return p.renderForm(ctx, "Edit Course", f, errors.Wrap(err, "updating course"))
	}
	return redirectMessage(ctx, objPath("/courses", row.ID), "Course updated successfully.")
}

func (p *coursePages) confirmDelete(ctx echo.Context) error {
	row, err := ctxCourse(ctx)
	if err != nil {
		return err
	}
	deps, err := p.svc.Dependencies(ctx.Request().Context(), row.ID)
	if err != nil {
		return errors.Wrap(err, "counting course dependencies")
	}
	page := deletePage{
		Kind:      "course",
		Name:      row.Title,
		Action:    objPath("/courses", row.ID, "/delete"),
		CancelURL: objPath("/courses", row.ID),
	}
	if deps.Any() {
		page.Warning = "This course has enrollments, assignments or reviews; the delete will be refused."
	}
	return renderDelete(ctx, "courses", page)
}

func (p *coursePages) destroy(ctx echo.Context) error {
	row, err := ctxCourse(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/courses", row.ID, "/delete"))
	}
	if err = p.svc.Delete(ctx.Request().Context(), row.ID); err != nil {
		if core.IsIntegrity(err) {
			return redirectError(ctx, objPath("/courses", row.ID), integrityMessage(err))
		}
		return errors.Wrap(err, "deleting course")
	}
	return redirectMessage(ctx, "/courses", "Course deleted successfully.")
}
