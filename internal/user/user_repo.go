package user

import (
	"context"
	"database/sql"

	"go-employee-mgmt/internal/auth"
	"go-employee-mgmt/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CountEmployees(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	err := connection.Session(ctx, r.db, r.tx).Table("employees").Count(&n).Error
	return n, err
}

// DeleteAll removes every user. Employees go with them through
// fk_employees_user ON DELETE CASCADE.
func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	res := connection.Session(ctx, r.db, r.tx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&auth.User{})
	return res.RowsAffected, res.Error
}
