package echoweb

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
)

type (
	// form is the view data of create and edit pages.
	form struct {
		ID      int // 0 when creating
		Action  string
		Values  interface{}
		Errors  map[string]string
		Options interface{} // select options, page specific
	}

	// deletePage is the view data of delete confirmation pages.
	deletePage struct {
		Kind      string
		Name      string
		Action    string
		CancelURL string
		Warning   string // set when the delete will be refused
	}
)

// renderForm renders a form page; with a validation err, the form is re-rendered with status 422.
// Any other err is returned as is.
func renderForm(ctx echo.Context, translator ut.Translator, name, title string, f form, err error) error {
	code := http.StatusOK
	if err != nil {
		fldErrs, ok := formErrors(err, translator)
		if !ok {
			return err
		}
		f.Errors = fldErrs
		code = http.StatusUnprocessableEntity
	}
	return render(ctx, code, name, title, f)
}

func renderDelete(ctx echo.Context, nav string, page deletePage) error {
	return ctx.Render(http.StatusOK, "delete", &View{Title: "Delete " + page.Kind, Nav: nav, Data: page})
}

func objPath(prefix string, id int, suffix ...string) string {
	p := fmt.Sprintf("%s/%d", prefix, id)
	for _, s := range suffix {
		p += s
	}
	return p
}
