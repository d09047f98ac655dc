package repository

import (
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// Sentinel errors translated by the service layer. Missing rows surface as sql.ErrNoRows.
var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrVersionConflict reports a compare-and-swap update that lost against a concurrent writer.
	ErrVersionConflict = errors.New("version conflict")
	// ErrNotPending reports a review of a pending edit that is already closed.
	ErrNotPending = errors.New("pending edit already reviewed")
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// isMissingRow reports whether err means the addressed row does not exist. An identifier that is not
// a valid UUID can never match a row, so PostgreSQL's cast failure counts as missing.
func isMissingRow(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

func pageWindow(page, size, defaultSize, maxSize int) (limit, offset uint64) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	return uint64(size), uint64((page - 1) * size)
}
