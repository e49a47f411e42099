package dbutil

import (
	"github.com/jmoiron/sqlx"
)

// Finalize converts gendry's MySQL-style placeholders into the $N form
// that lib/pq expects.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}
