package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
)

const (
	codeExclusionViolation = "23P01"
	codeUniqueViolation    = "23505"
	codeQueryCanceled      = "57014"
)

// TranslateError maps storage failures onto the domain taxonomy. Errors that are
// already domain errors pass through unchanged. A cancelled request is reported as
// a retryable timeout.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", apperror.ErrTimeout, err)
	}
	// A caller that went away is not a storage fault.
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: request cancelled", apperror.ErrTimeout)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeExclusionViolation:
			return fmt.Errorf("%w: overlaps an existing booking (%s)", apperror.ErrConflict, pgErr.ConstraintName)
		case codeUniqueViolation:
			return fmt.Errorf("%w: duplicate entry (%s)", apperror.ErrConflict, pgErr.ConstraintName)
		case codeQueryCanceled:
			return fmt.Errorf("%w: %s", apperror.ErrTimeout, pgErr.Message)
		}
	}
	return err
}
