package sqlview

import (
	"context"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"sync"
)

type ctxKey struct{}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Statement is one executed statement, as shown by the SQL display widget.
type Statement struct {
	ID    string
	Label string
	Query string
	Args  []interface{}
}

// Text is the statement with its parameters substituted, for display and copy.
func (st Statement) Text() string {
	return Interpolate(st.Query, st.Args)
}

// Highlighted is Text() with keyword highlighting.
func (st Statement) Highlighted() template.HTML {
	return Highlight(st.Text())
}

// Params lists bound parameters as "$n = literal".
func (st Statement) Params() []string {
	params := make([]string, 0, len(st.Args))
	for i, arg := range st.Args {
		params = append(params, fmt.Sprintf("$%d = %s", i+1, Literal(arg)))
	}
	return params
}

// Trace collects the statements executed while serving one request.
type Trace struct {
	mu         sync.Mutex
	statements []Statement
}

func NewTrace() *Trace {
	return new(Trace)
}

func (t *Trace) add(label, query string, args []interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := fmt.Sprintf("sql-%d-%s", len(t.statements)+1, slug(label))
	t.statements = append(t.statements, Statement{ID: id, Label: label, Query: query, Args: args})
}

// Statements returns a copy of the recorded statements, in execution order.
func (t *Trace) Statements() []Statement {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Statement, len(t.statements))
	copy(out, t.statements)
	return out
}

func NewContext(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the request Trace, or nil.
func FromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(ctxKey{}).(*Trace)
	return t
}

// Record adds an executed statement to the request Trace, if any.
func Record(ctx context.Context, label, query string, args ...interface{}) {
	if t := FromContext(ctx); t != nil {
		t.add(label, query, args)
	}
}

func slug(s string) string {
	return strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
