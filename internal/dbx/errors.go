package dbx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err comes from a PostgreSQL unique
// constraint (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports whether err comes from a PostgreSQL foreign
// key constraint (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// Wrap marks err as a storage failure so callers can match it with
// errors.Is(err, common.ErrDependency). Nil stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrDependency) {
		return err
	}
	return fmt.Errorf("db error: %w: %w", common.ErrDependency, err)
}
