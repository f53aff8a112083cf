// Package sqlxrepos implements the domain repository interfaces on top of
// Postgres via sqlx, with squirrel building the dynamic filter queries.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
)

// psql is the shared statement builder with Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func searchPattern(s string) string {
	return "%" + s + "%"
}
