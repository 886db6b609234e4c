package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core/catalog"
	"github.com/trezcool/lmsadmin/core/sqlview"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// RunReadOnly does not execute SQL: it records the statement and returns one row holding its label.
func (repo *catalogRepository) RunReadOnly(ctx context.Context, label, query string) (sqlview.Result, error) {
	sqlview.Record(ctx, label, query)
	if !catalog.IsReadOnly(query) {
		return sqlview.Result{}, errors.New("cannot execute statement in a read-only transaction")
	}
	res := sqlview.Result{Columns: []string{"label"}}
	res.AppendRow([]interface{}{label})
	return res, nil
}
