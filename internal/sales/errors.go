package sales

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrConstraintViolation is returned when a sale is persisted with a required
// field missing.
var ErrConstraintViolation = errors.New("sale is missing a required field")

// ErrInvalidPrice is returned when a price has more decimal places or integer
// digits than the price column holds. It is also an ErrConstraintViolation.
var ErrInvalidPrice = errors.New("sale price must have at most 10 integer digits and 2 decimal places")

// ErrStorageUnavailable marks any other failure of the storage engine.
var ErrStorageUnavailable = errors.New("sale storage unavailable")

// postgres SQLSTATE codes for column constraints.
const (
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
	pgNumericOverflow  = "22003"
)

// classifyStorageError marks err with the sentinel callers match on, keeping
// the driver error as the cause.
func classifyStorageError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if isPriceOverflow(err) {
		return invalidPrice(errors.Wrap(err, msg))
	}
	if isConstraintViolation(err) {
		return errors.Mark(errors.Wrap(err, msg), ErrConstraintViolation)
	}
	return errors.Mark(errors.Wrap(err, msg), ErrStorageUnavailable)
}

// invalidPrice returns ErrInvalidPrice, marked as a constraint violation and
// keeping cause when there is one.
func invalidPrice(cause error) error {
	if cause == nil {
		return errors.Mark(ErrInvalidPrice, ErrConstraintViolation)
	}
	return errors.Mark(errors.Mark(cause, ErrInvalidPrice), ErrConstraintViolation)
}

func isPriceOverflow(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgNumericOverflow
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintNotNull ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgNotNullViolation || pgErr.Code == pgCheckViolation
	}

	// drivers that only surface text
	msg := err.Error()
	return strings.Contains(msg, "NOT NULL constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed")
}
