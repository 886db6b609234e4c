package echoweb

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core/sqlview"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

//go:embed templates static
var webFS embed.FS

const (
	layoutTemplate = "layout"
	pagesDir       = "templates/pages"

	// nonFieldErrors is the form error key of errors not bound to one field.
	nonFieldErrors = "_form"
)

// View is what every page template is executed with. Data holds the page-specific content.
type View struct {
	AppName    string
	Title      string
	Nav        string
	Data       interface{}
	Message    string
	Error      string
	CSRF       string
	Admin      *user.User
	Statements []sqlview.Statement
}

// render wraps data into a View and renders the named page.
func render(ctx echo.Context, code int, name, title string, data interface{}) error {
	return ctx.Render(code, name, &View{Title: title, Data: data})
}

// Renderer is an echo.Renderer over the embedded html templates.
// Each page is parsed along with the layout and the shared partials.
type Renderer struct {
	appName   string
	templates map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

func NewRenderer(appName string) (*Renderer, error) {
	base, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(webFS, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "parsing layout")
	}

	pages, err := fs.Glob(webFS, pagesDir+"/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "listing pages")
	}
	r := &Renderer{appName: appName, templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, errors.Wrap(err, "cloning layout")
		}
		if tmpl, err = tmpl.ParseFS(webFS, page); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", page)
		}
		r.templates[strings.TrimSuffix(path.Base(page), ".gohtml")] = tmpl
	}
	return r, nil
}

func mustNewRenderer(appName string) *Renderer {
	r, err := NewRenderer(appName)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}

	view, ok := data.(*View)
	if !ok {
		view = &View{Data: data}
	}
	view.AppName = r.appName
	if view.Nav == "" {
		view.Nav = strings.SplitN(name, "_", 2)[0]
	}
	view.Message = ctx.QueryParam("message")
	view.Error = ctx.QueryParam("error")
	if token, ok := ctx.Get(csrfContextKey).(string); ok {
		view.CSRF = token
	}
	if usr, ok := getContextUser(ctx); ok {
		view.Admin = &usr
	}
	view.Statements = sqlview.FromContext(ctx.Request().Context()).Statements()

	return tmpl.ExecuteTemplate(w, layoutTemplate, view)
}

var templateFuncs = template.FuncMap{
	"money":       money,
	"decimal":     decimal,
	"grade":       grade,
	"gradeLetter": submission.GradeLetter,
	"date":        func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"datetime":    func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
	"dateInput":   func(t time.Time) string { return t.Format("2006-01-02") },
	"nullTime":    nullTime,
	"nullStr":     func(s null.String) string { return s.String },
	"stars":       stars,
	"roleName":    roleName,
	"percent":     func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) + "%" },
	"selected":    selected,
	"errorFor":    errorFor,
	"navItem":     newNavItem,
	"highlight":   sqlview.Highlight,
}

type navItem struct {
	Active bool
	URL    string
	Label  string
}

func newNavItem(current, nav, url, label string) navItem {
	return navItem{Active: current == nav, URL: url, Label: label}
}

// money formats a price as "$1,234.50"; a NULL aggregate is "$0.00".
func money(v interface{}) string {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case null.Float64:
		f = val.Float64
	case int:
		f = float64(val)
	}

	sign := ""
	if f < 0 {
		sign, f = "-", math.Abs(f)
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String() + frac
}

// decimal formats averages with one decimal, or "N/A" when NULL.
func decimal(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', 1, 64)
	case null.Float64:
		if !val.Valid {
			return "N/A"
		}
		return strconv.FormatFloat(val.Float64, 'f', 1, 64)
	}
	return fmt.Sprint(v)
}

func grade(g null.Float64) string {
	if !g.Valid {
		return "Pending"
	}
	return strconv.FormatFloat(g.Float64, 'f', 2, 64)
}

func nullTime(t null.Time) string {
	if !t.Valid {
		return "-"
	}
	return t.Time.Format("Jan 2, 2006 15:04")
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func roleName(role string) string {
	for _, r := range user.Roles {
		if r.Value == role {
			return r.Name
		}
	}
	return role
}

// selected compares a form value with an option value, whatever their types.
func selected(value, option interface{}) template.HTMLAttr {
	if fmt.Sprint(value) == fmt.Sprint(option) {
		return "selected"
	}
	return ""
}

func errorFor(errs map[string]string, field string) string {
	return errs[field]
}
