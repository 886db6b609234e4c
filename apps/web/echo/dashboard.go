package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core/catalog"
	"github.com/trezcool/lmsadmin/core/dashboard"
)

type dashboardPage struct {
	svc *dashboard.Service
}

func newDashboardPage(opts *Options) *dashboardPage {
	return &dashboardPage{svc: opts.DashboardSvc}
}

func (p *dashboardPage) show(ctx echo.Context) error {
	summary, err := p.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	return render(ctx, http.StatusOK, "dashboard", "Dashboard", summary)
}

type (
	catalogPage struct {
		svc *catalog.Service
	}

	catalogView struct {
		Sections []catalog.Section
		Current  string
		Results  []catalog.SectionResult
	}
)

func newCatalogPage(opts *Options) *catalogPage {
	return &catalogPage{svc: opts.CatalogSvc}
}

// show runs the entries of ?section=, or the whole catalog.
func (p *catalogPage) show(ctx echo.Context) error {
	var ids []string
	current := ctx.QueryParam("section")
	if current != "" {
		ids = append(ids, current)
	}

	results, err := p.svc.Run(ctx.Request().Context(), ids...)
	if err != nil {
		if errors.Cause(err) == catalog.ErrSectionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "running sql catalog")
	}
	return render(ctx, http.StatusOK, "sql", "SQL Queries", catalogView{
		Sections: p.svc.Sections(),
		Current:  current,
		Results:  results,
	})
}
