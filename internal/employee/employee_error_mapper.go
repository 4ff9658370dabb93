package employee

import (
	"errors"
	"strings"

	"go-employee-mgmt/internal/auth"
	employeeerrors "go-employee-mgmt/internal/employee/errors"
	"go-employee-mgmt/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	uniqueEmployeeUser = "uq_employees_user_id"
	fkEmployeeJob      = "fk_employees_job"
	uniqueUserEmail    = "uq_users_email"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == uniqueEmployeeUser:
			return employeeerrors.ErrProfileAlreadyCompleted
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == uniqueUserEmail:
			return auth.MapRepositoryError(err)
		case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == fkEmployeeJob:
			return employeeerrors.ErrJobNotFound
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueEmployeeUser) {
		return employeeerrors.ErrProfileAlreadyCompleted
	}
	if strings.Contains(errMsg, "foreign key constraint") && strings.Contains(errMsg, fkEmployeeJob) {
		return employeeerrors.ErrJobNotFound
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrInternal.WithErr(err)
}
