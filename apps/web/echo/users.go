package echoweb

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

const deleteSelfMessage = "You cannot delete your own account."

type (
	userPages struct {
		svc        *user.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	userListPage struct {
		Users  []user.User
		Filter user.QueryFilter
		Counts user.RoleCounts
		Roles  []user.Role
	}

	userFormOptions struct {
		Roles []user.Role
		Deps  *user.Dependencies
	}
)

func registerUserPages(g *echo.Group, opts *Options) {
	p := userPages{
		svc:        opts.UserSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	g.GET("/users", p.query)
	g.POST("/users", p.create)
	g.GET("/users/new", p.newForm)

	// detail pages
	dg := g.Group("/users/:id", objectMiddleware(func(ctx context.Context, id int) (interface{}, error) {
		return p.svc.GetByID(ctx, id)
	}))
	dg.GET("", p.retrieve)
	dg.POST("", p.update)
	dg.GET("/edit", p.editForm)
	dg.GET("/delete", p.confirmDelete)
	dg.POST("/delete", p.destroy)
}

func ctxUser(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(objectKey).(user.User)
	if !ok {
		return user.User{}, errors.Wrap(errObjNotInCtx, "retrieving user from context")
	}
	return usr, nil
}

// Handlers

func (p *userPages) query(ctx echo.Context) error {
	var filter user.QueryFilter
	bindFilter(ctx, &filter)

	reqCtx := ctx.Request().Context()
	users, err := p.svc.Query(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	counts, err := p.svc.CountRoles(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting roles")
	}
	return render(ctx, http.StatusOK, "users_list", "Users", userListPage{
		Users:  users,
		Filter: filter,
		Counts: counts,
		Roles:  user.Roles,
	})
}

func (p *userPages) newForm(ctx echo.Context) error {
	f := form{
		Action:  "/users",
		Values:  user.NewUser{Role: user.RoleStudent},
		Options: userFormOptions{Roles: user.Roles},
	}
	return renderForm(ctx, p.translator, "users_form", "Add User", f, nil)
}

func (p *userPages) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	reqCtx := ctx.Request().Context()
	err := data.Validate(reqCtx, p.validate, p.svc)
	var usr user.User
	if err == nil {
		usr, err = p.svc.Create(reqCtx, data)
	}
	if err != nil {
		data.Password = ""
		f := form{Action: "/users", Values: data, Options: userFormOptions{Roles: user.Roles}}
		return renderForm(ctx, p.translator, "users_form", "Add User", f, errors.Wrap(err, "creating user"))
	}
	return redirectMessage(ctx, objPath("/users", usr.ID), "User created successfully.")
}

func (p *userPages) retrieve(ctx echo.Context) error {
	usr, err := ctxUser(ctx)
	if err != nil {
		return err
	}
	detail, err := p.svc.Detail(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "loading user detail")
	}
	return render(ctx, http.StatusOK, "users_detail", usr.Name, detail)
}

func (p *userPages) editForm(ctx echo.Context) error {
	usr, err := ctxUser(ctx)
	if err != nil {
		return err
	}
	deps, err := p.svc.Dependencies(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "counting user dependencies")
	}
	f := form{
		ID:      usr.ID,
		Action:  objPath("/users", usr.ID),
		Values:  user.UpdateUser{Name: usr.Name, Email: usr.Email, Role: usr.Role},
		Options: userFormOptions{Roles: user.Roles, Deps: &deps},
	}
	return renderForm(ctx, p.translator, "users_form", "Edit User", f, nil)
}

func (p *userPages) update(ctx echo.Context) error {
	usr, err := ctxUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	reqCtx := ctx.Request().Context()
	if err = data.Validate(reqCtx, usr, p.validate, p.svc); err == nil {
		_, err = p.svc.Update(reqCtx, usr.ID, data)
	}
	if err != nil {
		data.Password = ""
		f := form{
			ID:      usr.ID,
			Action:  objPath("/users", usr.ID),
			Values:  data,
			Options: userFormOptions{Roles: user.Roles},
		}
		return renderForm(ctx, p.translator, "users_form", "Edit User", f, errors.Wrap(err, "updating user"))
	}
	return redirectMessage(ctx, objPath("/users", usr.ID), "User updated successfully.")
}

func (p *userPages) confirmDelete(ctx echo.Context) error {
	usr, err := ctxUser(ctx)
	if err != nil {
		return err
	}
	deps, err := p.svc.Dependencies(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "counting user dependencies")
	}
	page := deletePage{
		Kind:      "user",
		Name:      usr.Name + " <" + usr.Email + ">",
		Action:    objPath("/users", usr.ID, "/delete"),
		CancelURL: objPath("/users", usr.ID),
	}
	if deps.Any() {
		page.Warning = "This user instructs courses or holds enrollments or submissions; the delete will be refused."
	}
	return renderDelete(ctx, "users", page)
}

func (p *userPages) destroy(ctx echo.Context) error {
	usr, err := ctxUser(ctx)
	if err != nil {
		return err
	}
	if !confirmed(ctx) {
		return ctx.Redirect(http.StatusSeeOther, objPath("/users", usr.ID, "/delete"))
	}

	// Say No to Suicide! the signed-in admin cannot delete themselves
	if admin, ok := getContextUser(ctx); ok && admin.ID == usr.ID {
		return redirectError(ctx, objPath("/users", usr.ID), deleteSelfMessage)
	}

	if err = p.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		if core.IsIntegrity(err) {
			return redirectError(ctx, objPath("/users", usr.ID), integrityMessage(err))
		}
		return errors.Wrap(err, "deleting user")
	}
	return redirectMessage(ctx, "/users", "User deleted successfully.")
}
