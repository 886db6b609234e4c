// Package sqlxrepos implements the core repositories on PostgreSQL with sqlx and squirrel.
// Every executed statement is recorded on the request's sqlview.Trace.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/sqlview"
)

// postgres error codes
const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
	checkViolation      = pq.ErrorCode("23514")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func pqErrCode(err error) pq.ErrorCode {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code
	}
	return ""
}

func pqConstraint(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Constraint
	}
	return ""
}

// trapNoRowsErr maps "no rows" to notFound, and wraps anything else with msg.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapDeleteErr maps foreign-key violations to core.ErrReferenced.
func trapDeleteErr(err error, msg string) error {
	if pqErrCode(err) == foreignKeyViolation {
		return core.ErrReferenced
	}
	return errors.Wrap(err, msg)
}

// get runs a single-row query into dest and records it under label.
func get(ctx context.Context, exec core.DBExecutor, label string, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	err = exec.GetContext(ctx, dest, query, args...)
	sqlview.Record(ctx, label, query, args...)
	return err
}

// selectAll runs a multi-row query into dest and records it under label.
func selectAll(ctx context.Context, exec core.DBExecutor, label string, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	err = exec.SelectContext(ctx, dest, query, args...)
	sqlview.Record(ctx, label, query, args...)
	return err
}

// execute runs a statement, records it under label and returns the number of affected rows.
func execute(ctx context.Context, exec core.DBExecutor, label string, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, query, args...)
	sqlview.Record(ctx, label, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// exists reports whether b returns at least one row.
func exists(ctx context.Context, exec core.DBExecutor, label string, b sq.SelectBuilder) (bool, error) {
	var found bool
	query := psql.Select().Column(sq.Expr("EXISTS (?)", b.PlaceholderFormat(sq.Question)))
	if err := get(ctx, exec, label, &found, query); err != nil {
		return false, err
	}
	return found, nil
}

func like(term string) string {
	return "%" + term + "%"
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}
