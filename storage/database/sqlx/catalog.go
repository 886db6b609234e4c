package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/catalog"
	"github.com/trezcool/lmsadmin/core/sqlview"
)

type catalogRepository struct {
	db core.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db core.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// RunReadOnly executes query in a READ ONLY transaction that is always rolled back.
func (repo catalogRepository) RunReadOnly(ctx context.Context, label, query string) (sqlview.Result, error) {
	tx, err := repo.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return sqlview.Result{}, errors.Wrap(err, "beginning read-only transaction")
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryxContext(ctx, query)
	sqlview.Record(ctx, label, query)
	if err != nil {
		return sqlview.Result{}, err
	}
	defer func() { _ = rows.Close() }()

	var res sqlview.Result
	if res.Columns, err = rows.Columns(); err != nil {
		return sqlview.Result{}, errors.Wrap(err, "reading columns")
	}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return sqlview.Result{}, errors.Wrap(err, "scanning row")
		}
		res.AppendRow(values)
	}
	if err = rows.Err(); err != nil {
		return sqlview.Result{}, err
	}
	return res, nil
}
