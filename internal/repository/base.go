// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationSQLState is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolationSQLState = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
// Postgres surfaces a typed pgconn error; the sqlite driver used in tests
// only exposes its message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationSQLState
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
