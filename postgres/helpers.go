package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgErrCode extracts the PostgreSQL error code, or "" for non-pg errors.
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation checks if an error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == "23505" // unique_violation
}

// isForeignKeyViolation checks if an error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == "23503" // foreign_key_violation
}
