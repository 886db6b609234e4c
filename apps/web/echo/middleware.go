package echoweb

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/sqlview"
)

const (
	csrfFormField  = "_csrf"
	csrfContextKey = "csrf"
	objectKey      = "object"
)

// sqlTraceMiddleware attaches a sqlview.Trace to the request context.
// Repositories record every statement they execute into it.
func sqlTraceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(sqlview.NewContext(req.Context(), sqlview.NewTrace())))
		return next(ctx)
	}
}

// objectMiddleware loads the object identified by the ":id" path param into the context.
func objectMiddleware(load func(ctx context.Context, id int) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := core.ParseID(ctx.Param("id"))
			if id == 0 {
				return errHttpNotFound
			}
			obj, err := load(ctx.Request().Context(), id)
			if err != nil {
				if isNotFound(err) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "loading object")
			}
			ctx.Set(objectKey, obj)
			return next(ctx)
		}
	}
}

// bindFilter binds query params to a list filter. An invalid filter value drops the whole filter.
func bindFilter(ctx echo.Context, filter interface{ Clean() }) {
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, filter); err != nil {
		ctx.Logger().Debugf("binding filter: %v", err)
	}
	filter.Clean()
}

func confirmed(ctx echo.Context) bool {
	return strings.EqualFold(ctx.FormValue("confirm"), "yes")
}

func redirectMessage(ctx echo.Context, path, msg string) error {
	return ctx.Redirect(http.StatusSeeOther, path+"?"+url.Values{"message": {msg}}.Encode())
}

func redirectError(ctx echo.Context, path, msg string) error {
	return ctx.Redirect(http.StatusSeeOther, path+"?"+url.Values{"error": {msg}}.Encode())
}
