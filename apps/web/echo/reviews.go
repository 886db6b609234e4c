package echoweb

import (
	"context"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/user"
)

type (
	reviewPages struct {
		svc        *review.Service
		courseSvc  *course.Service
		userSvc    *user.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	reviewOptions struct {
		Courses  []course.Course
		Students []user.User
		Ratings  []int
	}

	reviewListPage struct {
		Reviews []review.Row
		Filter  review.QueryFilter
		Stats   review.Stats
		Options reviewOptions
	}
)

var ratings = []int{5, 4, 3, 2, 1}

func registerReviewPages(g *echo.Group, opts *Options) {
	p := reviewPages{
		svc:        opts.ReviewSvc,
		courseSvc:  opts.CourseSvc,
		userSvc:    opts.UserSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	g.GET("/reviews", p.query)
	g.POST("/reviews", p.create)
	g.GET("/reviews/new", p.newForm)

	// reviews are immutable: no detail nor edit page
	dg := g.Group("/reviews/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxReview(ctx echo.Context) (review.Row, error) {
	row, ok := ctx.Get(objectKey).(review.Row)
	if !ok {
		return review.Row{}, errors.Wrap(errObjNotInCtx, "retrieving review from context")
	}
	return row, nil
}

func (p *reviewPages) options(ctx context.Context) (reviewOptions, error) {
	opts := reviewOptions{Ratings: ratings}
	var err error
	if opts.Courses, err = p.courseSvc.QueryAll(ctx); err != nil {
		return reviewOptions{}, errors.Wrap(err, "querying courses")
	}
	if opts.Students, err = p.userSvc.QueryByRole(ctx, user.RoleStudent); err != nil {
		return reviewOptions{}, errors.Wrap(err, "querying students")
	}
	return opts, nil
}

func (p *reviewPages) query(ctx echo.Context) error {
	var filter review.QueryFilter
	bindFilter(ctx, &filter)

	reqCtx := ctx.Request().Context()
	reviews, err := p.svc.Query(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	stats, err := p.svc.Stats(reqCtx)
	if err != nil {
		return errors.Wrap(err, "loading review stats")
	}
	opts, err := p.options(reqCtx)
	if err != nil {
		return err
	}
	return render(ctx, http.StatusOK, "reviews_list", "Reviews", reviewListPage{
		Reviews: reviews,
		Filter:  filter,
		Stats:   stats,
		Options: opts,
	})
}

func (p *reviewPages) renderNewForm(ctx echo.Context, data review.NewReview, err error) error {
	opts, optsErr := p.options(ctx.Request().Context())
	if optsErr != nil {
		return optsErr
	}
	f := form{Action: "/reviews", Values: data, Options: opts}
	return renderForm(ctx, p.translator, "reviews_form", "Add Review", f, err)
}

func (p *reviewPages) newForm(ctx echo.Context) error {
	data := review.NewReview{
		CourseID:  ctx.QueryParam("course"),
		StudentID: ctx.QueryParam("student"),
		Rating:    strconv.Itoa(5),
	}
	return p.renderNewForm(ctx, data, nil)
}

func (p *reviewPages) create(ctx echo.Context) error {
	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	if err == nil {
		_, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		return p.renderNewForm(ctx, data, errors.Wrap(err, "creating review"))
	}
	return redirectMessage(ctx, "/reviews", "Review added successfully.")
}

func (p *reviewPages) confirmDelete(ctx echo.Context) error {
	row, err := ctxReview(ctx)
	if err != nil {
		return err
	}
	return renderDelete(ctx, "reviews", deletePage{
		Kind:      "review",
		Name:      row.StudentName + " on " + row.CourseTitle + " (" + stars(row.Rating) + ")",
		Action:    objPath("/reviews", row.ID, "/delete"),
		CancelURL: "/reviews",
	})
}

func (p *reviewPages) destroy(ctx echo.Context) error {
	row, err := ctxReview(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/reviews", row.ID, "/delete"))
	}
	if err = p.svc.Delete(ctx.Request().Context(), row.ID); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	return redirectMessage(ctx, "/reviews", "Review deleted successfully.")
}
