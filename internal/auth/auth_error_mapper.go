package auth

import (
	"errors"
	"strings"

	autherrors "go-employee-mgmt/internal/auth/errors"
	"go-employee-mgmt/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation = "23505"
	uniqueEmailIndex  = "uq_users_email"
)

// MapRepositoryError translates credential-store errors. It is exported for
// other features that insert users inside their own transactions.
func MapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return autherrors.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == uniqueEmailIndex {
			return autherrors.ErrEmailAlreadyRegistered
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return autherrors.ErrEmailAlreadyRegistered
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueEmailIndex) {
		return autherrors.ErrEmailAlreadyRegistered
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrInternal.WithErr(err)
}
