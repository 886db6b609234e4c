package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core/sqlview"
)

type fakeRepo struct {
	fail  map[string]bool
	calls []string
}

func (r *fakeRepo) RunReadOnly(_ context.Context, label, _ string) (sqlview.Result, error) {
	r.calls = append(r.calls, label)
	if r.fail[label] {
		return sqlview.Result{}, errors.New("relation does not exist")
	}
	return sqlview.Result{Columns: []string{"n"}, Rows: [][]sqlview.Cell{{{Value: "1"}}}}, nil
}

func TestSections(t *testing.T) {
	require.NoError(t, Validate(Sections))
	assert.Len(t, Sections, 11)

	ids := []string{
		"basic_select", "basic_order", "basic_like", "basic_between",
		"join_inner", "join_left", "join_multiple",
		"agg_count", "agg_avg", "agg_sum", "agg_max_min",
		"group_having", "group_multiple",
		"sub_where", "sub_correlated", "sub_from",
		"set_union", "set_union_all",
		"view_course", "view_student", "view_revenue", "view_instructor", "view_assignment",
		"proc_top_students", "proc_revenue",
		"func_grade", "func_completion", "func_count",
		"trigger_list", "trigger_impact",
		"adv_case", "adv_exists", "adv_distinct", "adv_date", "adv_string",
	}
	var got []string
	for _, sec := range Sections {
		for _, e := range sec.Entries {
			got = append(got, e.ID)
		}
	}
	assert.Equal(t, ids, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
		wantErr  bool
	}{
		{"valid", []Section{{ID: "a", Entries: []Entry{{ID: "a1", Query: "select 1"}}}}, false},
		{"with", []Section{{ID: "a", Entries: []Entry{{ID: "a1", Query: "  WITH x AS (SELECT 1) SELECT * FROM x"}}}}, false},
		{"duplicate entry", []Section{{ID: "a", Entries: []Entry{{ID: "a1", Query: "SELECT 1"}, {ID: "a1", Query: "SELECT 2"}}}}, true},
		{"entry shadows section", []Section{{ID: "a", Entries: []Entry{{ID: "a", Query: "SELECT 1"}}}}, true},
		{"write query", []Section{{ID: "a", Entries: []Entry{{ID: "a1", Query: "DELETE FROM users"}}}}, true},
		{"prefix only", []Section{{ID: "a", Entries: []Entry{{ID: "a1", Query: "SELECTED"}}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sections)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	repo := &fakeRepo{fail: map[string]bool{"7.1 course_overview": true}}
	svc := NewService(repo)

	t.Run("failing entry does not abort", func(t *testing.T) {
		results, err := svc.Run(context.Background(), "views")
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Len(t, results[0].Results, 5)
		assert.Equal(t, "relation does not exist", results[0].Results[0].Err)
		for _, r := range results[0].Results[1:] {
			assert.Empty(t, r.Err)
			assert.False(t, r.Result.IsEmpty())
		}
	})

	t.Run("all sections", func(t *testing.T) {
		results, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, results, len(Sections))
	})

	t.Run("unknown section", func(t *testing.T) {
		_, err := svc.Run(context.Background(), "nope")
		assert.Equal(t, ErrSectionNotFound, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		failing := &fakeRepo{fail: map[string]bool{"1.1 SELECT with WHERE": true}}
		_, err := NewService(failing).Run(ctx, "basic")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
