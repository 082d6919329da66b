package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error is a unique violation.
// When constraintName is provided, the match is narrowed to that constraint so
// callers can distinguish which column collided (duplicate email vs phone).
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		if pgxErr.Code != uniqueViolationCode {
			return false
		}
		return constraintName == "" || pgxErr.ConstraintName == constraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) != uniqueViolationCode {
			return false
		}
		return constraintName == "" || pqErr.Constraint == constraintName
	}

	// SQLite (tests) and other drivers only expose the message text.
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName) ||
			strings.Contains(msg, sqliteConstraintHint(constraintName))
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// sqliteConstraintHint maps a Postgres constraint name to the column text
// SQLite embeds in its UNIQUE failure messages, e.g. users_email_key ->
// "users.email".
func sqliteConstraintHint(constraintName string) string {
	trimmed := strings.TrimSuffix(constraintName, "_key")
	parts := strings.SplitN(trimmed, "_", 2)
	if len(parts) != 2 {
		return constraintName
	}
	return parts[0] + "." + parts[1]
}
