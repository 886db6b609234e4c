package echoweb

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "The page you are looking for does not exist.")
	errObjNotInCtx  = errors.New("object not found in echo.Context")

	serverErrorMessage = "Something went wrong."
	referencedMessage  = "Cannot delete this record: other records still reference it."
)

type errorPage struct {
	Code    int
	Status  string
	Message string
}

// isNotFound reports whether err is one of the entities' ErrNotFound.
func isNotFound(err error) bool {
	switch errors.Cause(err) {
	case user.ErrNotFound, category.ErrNotFound, course.ErrNotFound, enrollment.ErrNotFound,
		assignment.ErrNotFound, submission.ErrNotFound, review.ErrNotFound:
		return true
	}
	return false
}

// formErrors maps validation errors to {field: message}. ok is false for any other error.
func formErrors(err error, translator ut.Translator) (fldErrs map[string]string, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs = make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			if _, exists := fldErrs[vErr.Field()]; !exists {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
		}
		return fldErrs, true
	case *core.ValidationError:
		fldErrs = make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			fldErrs[fErr.Field] = fErr.Error
		}
		if len(fldErrs) == 0 {
			fldErrs[nonFieldErrors] = origErr.Error()
		}
		return fldErrs, true
	}
	return nil, false
}

// integrityMessage is the text shown when a guard or the database refuses a delete.
func integrityMessage(err error) string {
	if ie, ok := errors.Cause(err).(*core.IntegrityError); ok {
		return ie.Message
	}
	return referencedMessage
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering our error pages.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if code == http.StatusNotFound {
				message = errHttpNotFound.Message.(string)
			} else if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusUnprocessableEntity
			message = origErr.Error()
		case *core.IntegrityError:
			code = http.StatusConflict
			message = origErr.Message
		default:
			switch {
			case isNotFound(err):
				code = http.StatusNotFound
				message = errHttpNotFound.Message.(string)
			case origErr == core.ErrReferenced:
				code = http.StatusConflict
				message = referencedMessage
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = serverErrorMessage

				extra := map[string]interface{}{
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
					"method":     ctx.Request().Method,
					"path":       ctx.Request().URL.Path,
				}
				if usr, ok := getContextUser(ctx); ok {
					logger.Error(message, errors.Wrap(err, message), extra, usr)
				} else {
					logger.Error(message, errors.Wrap(err, message), extra)
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = render(ctx, code, "error", http.StatusText(code), errorPage{
					Code:    code,
					Status:  http.StatusText(code),
					Message: message,
				})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
