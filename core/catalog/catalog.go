// Package catalog holds the curated read-only SQL examples shown on the SQL demonstration page.
package catalog

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core/sqlview"
)

var (
	ErrSectionNotFound = errors.New("catalog section not found")

	readOnlyRegex = regexp.MustCompile(`(?is)^\s*(SELECT|WITH|CALL)\b`)
)

type (
	Entry struct {
		ID          string
		Title       string
		Description string
		Query       string
	}

	Section struct {
		ID          string
		Title       string
		Description string
		Entries     []Entry
	}

	EntryResult struct {
		Entry
		Result sqlview.Result
		Err    string
	}

	SectionResult struct {
		Section
		Results []EntryResult
	}

	Repository interface {
		// RunReadOnly executes query inside a read-only transaction that is always rolled back.
		RunReadOnly(ctx context.Context, label, query string) (sqlview.Result, error)
	}

	Service struct {
		repo     Repository
		sections []Section
	}
)

func init() {
	if err := Validate(Sections); err != nil {
		panic(err)
	}
}

// Validate checks that entry ids are unique and every query is a read.
func Validate(sections []Section) error {
	seen := make(map[string]bool)
	for _, sec := range sections {
		if seen[sec.ID] {
			return fmt.Errorf("catalog: duplicate id %q", sec.ID)
		}
		seen[sec.ID] = true
		for _, e := range sec.Entries {
			if seen[e.ID] {
				return fmt.Errorf("catalog: duplicate id %q", e.ID)
			}
			seen[e.ID] = true
			if !IsReadOnly(e.Query) {
				return fmt.Errorf("catalog: entry %q is not a read-only query", e.ID)
			}
		}
	}
	return nil
}

// IsReadOnly reports whether query starts with SELECT, WITH or CALL.
func IsReadOnly(query string) bool {
	return readOnlyRegex.MatchString(query)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, sections: Sections}
}

func (svc *Service) Sections() []Section {
	return svc.sections
}

func (svc *Service) Section(id string) (Section, error) {
	for _, sec := range svc.sections {
		if sec.ID == id {
			return sec, nil
		}
	}
	return Section{}, ErrSectionNotFound
}

// Run executes the entries of the given sections, or of every section when none is given.
// A failing entry carries its error message; only a canceled context aborts the run.
func (svc *Service) Run(ctx context.Context, sectionIDs ...string) ([]SectionResult, error) {
	sections := svc.sections
	if len(sectionIDs) > 0 {
		sections = make([]Section, 0, len(sectionIDs))
		for _, id := range sectionIDs {
			sec, err := svc.Section(id)
			if err != nil {
				return nil, err
			}
			sections = append(sections, sec)
		}
	}

	results := make([]SectionResult, 0, len(sections))
	for _, sec := range sections {
		sr := SectionResult{Section: sec, Results: make([]EntryResult, 0, len(sec.Entries))}
		for _, e := range sec.Entries {
			res, err := svc.repo.RunReadOnly(ctx, e.Title, e.Query)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, errors.Wrap(ctxErr, "catalog.Run")
				}
				sr.Results = append(sr.Results, EntryResult{Entry: e, Err: err.Error()})
				continue
			}
			sr.Results = append(sr.Results, EntryResult{Entry: e, Result: res})
		}
		results = append(results, sr)
	}
	return results, nil
}
