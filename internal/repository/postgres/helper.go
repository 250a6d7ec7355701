package postgres

import (
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/jmoiron/sqlx"
)

// bindNamed expands :named parameters and rebinds them for the querier's driver
func bindNamed(q postgres.Querier, query string, arg interface{}) (string, []interface{}, error) {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return "", nil, err
	}
	return q.Rebind(bound), args, nil
}
