package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories translate
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

// Code returns the SQLSTATE of err, or "" when err is not a PgError
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// IsCheckViolation reports a failed CHECK constraint, such as a semester outside 1..8
func IsCheckViolation(err error) bool {
	return Code(err) == CheckViolation
}

// IsForeignKeyViolation reports a missing referenced row
func IsForeignKeyViolation(err error) bool {
	return Code(err) == ForeignKeyViolation
}
