package sqlview

import (
	"context"
	"html/template"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  template.HTML
	}{
		{
			name:  "keywords",
			query: "select name from users",
			want:  `<span class="sql-keyword">select</span> name <span class="sql-keyword">from</span> users`,
		},
		{
			name:  "multi-word keyword",
			query: "a LEFT  JOIN b",
			want:  `a <span class="sql-keyword">LEFT  JOIN</span> b`,
		},
		{
			name:  "keywords inside identifiers",
			query: "SELECT description, created_at",
			want:  `<span class="sql-keyword">SELECT</span> description, created_at`,
		},
		{
			name:  "escaped",
			query: "WHERE name = '<b>'",
			want:  `<span class="sql-keyword">WHERE</span> name = &#39;&lt;b&gt;&#39;`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.query))
		})
	}
}

func TestInterpolate(t *testing.T) {
	due := time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		query string
		args  []interface{}
		want  string
	}{
		{name: "no args", query: "SELECT 1", want: "SELECT 1"},
		{
			name:  "types",
			query: "VALUES ($1, $2, $3, $4, $5, $6)",
			args:  []interface{}{"O'Brien", 42, 9.5, true, nil, due},
			want:  "VALUES ('O''Brien', 42, 9.5, TRUE, NULL, '2024-03-10 12:30:00')",
		},
		{name: "valuers", query: "$1, $2", args: []interface{}{null.String{}, null.Float64From(88)}, want: "NULL, 88"},
		{name: "two digits", query: "$1 $10", args: []interface{}{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, want: "1 10"},
		{name: "out of range", query: "$1 $2", args: []interface{}{1}, want: "1 $2"},
		{name: "inside quotes", query: "SELECT '$1', $1", args: []interface{}{"x"}, want: "SELECT '$1', 'x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.query, tt.args))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil).String())
	assert.True(t, FormatValue(nil).Null)
	assert.Equal(t, "Physics", FormatValue([]byte("Physics")).String())
	assert.Equal(t, "2024-03-10", FormatValue(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "2024-03-10 08:15:00", FormatValue(time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC)).String())
	assert.Equal(t, "49.99", FormatValue(49.99).String())
	assert.Equal(t, "7", FormatValue(int64(7)).String())

	var res Result
	assert.True(t, res.IsEmpty())
	res.AppendRow([]interface{}{int64(1), nil})
	assert.Equal(t, [][]Cell{{{Value: "1"}, {Null: true}}}, res.Rows)
}

func TestTrace(t *testing.T) {
	Record(context.Background(), "ignored", "SELECT 1") // no trace: no-op

	trace := NewTrace()
	ctx := NewContext(context.Background(), trace)
	assert.Same(t, trace, FromContext(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Record(ctx, "Concurrent", "SELECT 1")
		}()
	}
	wg.Wait()
	Record(ctx, "Course Detail!", "SELECT * FROM courses WHERE course_id = $1", 3)

	stmts := trace.Statements()
	assert.Len(t, stmts, 11)
	last := stmts[10]
	assert.Equal(t, "sql-11-course-detail", last.ID)
	assert.Equal(t, "SELECT * FROM courses WHERE course_id = 3", last.Text())
	assert.Equal(t, []string{"$1 = 3"}, last.Params())
	assert.Contains(t, string(last.Highlighted()), `<span class="sql-keyword">FROM</span>`)

	var nilTrace *Trace
	assert.Nil(t, nilTrace.Statements())
}
