package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeInvalidText          = "22P02"
)

// isMissing reports whether a single-row lookup found nothing.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// lookupFailed wraps a failed single-row lookup. A malformed UUID cannot match
// any row, so it becomes NotFound; the transaction is aborted either way and the
// caller's own error must be the one that surfaces.
func lookupFailed(err error, what, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeInvalidText {
		return domain.NotFound("%s %s not found", what, id)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

// mapError turns the SQLSTATEs the ledger can recover from into retryable
// domain errors. Domain errors and anything else pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeLockNotAvailable:
		return domain.LockTimeout(err)
	case codeSerializationFailure, codeDeadlockDetected:
		return domain.Conflict("concurrent update", err)
	case codeUniqueViolation:
		return domain.Conflict("duplicate key "+pgErr.ConstraintName, err)
	case codeInvalidText:
		return domain.InvalidInput("malformed value: %s", pgErr.Message)
	}
	return err
}

// nullString maps "" to SQL NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
