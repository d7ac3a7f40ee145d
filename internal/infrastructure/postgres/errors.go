package postgres

import (
	"errors"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// translate maps driver errors onto domain errors. notFound and conflict are the
// caller's sentinels for a missing row and a unique violation.
func translate(err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return conflict
		case codeForeignKeyViolation:
			return apperr.Validation("referenced record does not exist")
		case codeCheckViolation:
			return apperr.Validation(pgErr.ConstraintName + " violated")
		}
	}
	return apperr.Persistence(err)
}
