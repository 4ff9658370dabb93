package employee

import (
	"context"
	"database/sql"

	"go-employee-mgmt/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByUserID(ctx context.Context, userID int64) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) session(ctx context.Context) *gorm.DB {
	return connection.Session(ctx, r.db, r.tx)
}

// Create relies on uq_employees_user_id and fk_employees_job; callers map the violations.
func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.session(ctx).Omit("Job", "User").Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.session(ctx).
		Preload("Job").
		Preload("User").
		Order("employees.id").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Employee, error) {
	var empl Employee
	err := r.session(ctx).
		Preload("Job").
		Preload("User").
		First(&empl, "employees.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID int64) (*Employee, error) {
	var empl Employee
	err := r.session(ctx).
		Preload("Job").
		Preload("User").
		First(&empl, "employees.user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	// Preloaded associations must not be written back.
	return r.session(ctx).Omit("Job", "User").Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.session(ctx).Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
