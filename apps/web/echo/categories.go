package echoweb

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/category"
)

type categoryPages struct {
	svc        *category.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerCategoryPages(g *echo.Group, opts *Options) {
	p := categoryPages{
		svc:        opts.CategorySvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	g.GET("/categories", p.query)
	g.POST("/categories", p.create)
	g.GET("/categories/new", p.newForm)

	dg := g.Group("/categories/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("", p.retrieve)
	dg.POST("", p.update)
	dg.GET("/edit", p.editForm)
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxCategory(ctx echo.Context) (category.Category, error) {
	cat, ok := ctx.Get(objectKey).(category.Category)
	if !ok {
		return category.Category{}, errors.Wrap(errObjNotInCtx, "retrieving category from context")
	}
	return cat, nil
}

func (p *categoryPages) query(ctx echo.Context) error {
	categories, err := p.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return render(ctx, http.StatusOK, "categories_list", "Categories", categories)
}

func (p *categoryPages) newForm(ctx echo.Context) error {
	f := form{Action: "/categories", Values: category.NewCategory{}}
	return renderForm(ctx, p.translator, "categories_form", "Add Category", f, nil)
}

func (p *categoryPages) create(ctx echo.Context) error {
	var data category.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	var cat category.Category
	if err == nil {
		cat, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		f := form{Action: "/categories", Values: data}
		return renderForm(ctx, p.translator, "categories_form", "Add Category", f, errors.Wrap(err, "creating category"))
	}
	return redirectMessage(ctx, objPath("/categories", cat.ID), "Category created successfully.")
}

func (p *categoryPages) retrieve(ctx echo.Context) error {
	cat, err := ctxCategory(ctx)
	if err != nil {
		return err
	}
	detail, err := p.svc.Detail(ctx.Request().Context(), cat)
	if err != nil {
		return errors.Wrap(err, "loading category detail")
	}
	return render(ctx, http.StatusOK, "categories_detail", cat.Name, detail)
}

func (p *categoryPages) editForm(ctx echo.Context) error {
	cat, err := ctxCategory(ctx)
	if err != nil {
		return err
	}
	f := form{
		ID:     cat.ID,
		Action: objPath("/categories", cat.ID),
		Values: category.NewCategory{Name: cat.Name, Description: cat.Description.String},
	}
	return renderForm(ctx, p.translator, "categories_form", "Edit Category", f, nil)
}

func (p *categoryPages) update(ctx echo.Context) error {
	cat, err := ctxCategory(ctx)
	if err != nil {
		return err
	}

	var data category.NewCategory
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}

	reqCtx := ctx.Request().Context()
	if err = data.Validate(reqCtx, p.validate, p.svc, cat.ID); err == nil {
		_, err = p.svc.Update(reqCtx, cat.ID, data)
	}
	if err != nil {
		f := form{ID: cat.ID, Action: objPath("/categories", cat.ID), Values: data}
		return renderForm(ctx, p.translator, "categories_form", "Edit Category", f, errors.Wrap(err, "updating category"))
	}
	return redirectMessage(ctx, objPath("/categories", cat.ID), "Category updated successfully.")
}

func (p *categoryPages) confirmDelete(ctx echo.Context) error {
	cat, err := ctxCategory(ctx)
	if err != nil {
		return err
	}
	return renderDelete(ctx, "categories", deletePage{
		Kind:      "category",
		Name:      cat.Name,
		Action:    objPath("/categories", cat.ID, "/delete"),
		CancelURL: objPath("/categories", cat.ID),
	})
}

func (p *categoryPages) destroy(ctx echo.Context) error {
	cat, err := ctxCategory(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/categories", cat.ID, "/delete"))
	}
	if err = p.svc.Delete(ctx.Request().Context(), cat.ID); err != nil {
		if core.IsIntegrity(err) {
			return redirectError(ctx, objPath("/categories", cat.ID), integrityMessage(err))
		}
		return errors.Wrap(err, "deleting category")
	}
	return redirectMessage(ctx, "/categories", "Category deleted successfully.")
}
