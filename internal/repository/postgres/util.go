package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConstraint = errors.New("constraint violation")
	ErrConflict   = errors.New("conflict")
)

// mapErr folds integrity violations into package sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%s: %w: %s", op, ErrConflict, pgErr.ConstraintName)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "23":
			return fmt.Errorf("%s: %w: %s", op, ErrConstraint, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
