package repository

import (
	"errors"

	"github.com/lib/pq"
)

type scanner interface {
	Scan(dest ...any) error
}

// Postgres error codes this engine relies on for control flow.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func isPGError(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
