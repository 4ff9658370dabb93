package user

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"

	"go-employee-mgmt/internal/auth"
	autherrors "go-employee-mgmt/internal/auth/errors"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/contextutil"
	usererrors "go-employee-mgmt/internal/user/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Operator is the identity used by offline tooling run from a shell. It is
// never issued a token.
var Operator = rbac.Identity{UserID: -1, Role: rbac.RoleAdmin}

type Service interface {
	BulkReset(ctx context.Context, actor rbac.Identity, req BulkResetRequest) (BulkResetResult, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	users      auth.Repository
	policy     rbac.Service
	validate   *validator.Validate
	bcryptCost int
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	users auth.Repository,
	policy rbac.Service,
	bcryptCost int,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &service{
		db:         db,
		repo:       repo,
		users:      users,
		policy:     policy,
		validate:   v,
		bcryptCost: bcryptCost,
		logger:     l,
	}
}

// BulkReset deletes every user and leaves a single admin behind, all in one
// transaction.
func (s *service) BulkReset(ctx context.Context, actor rbac.Identity, req BulkResetRequest) (BulkResetResult, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(actor, rbac.ResourceUser, rbac.ActionBulkReset); err != nil {
		return BulkResetResult{}, err
	}
	if !req.Confirm {
		return BulkResetResult{}, usererrors.ErrConfirmationRequired
	}

	req.Email = auth.NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return BulkResetResult{}, apperror.MapValidationError(err)
	}

	hashed, err := auth.HashPassword(req.Password, s.bcryptCost)
	if errors.Is(err, autherrors.ErrPasswordTooLong) {
		return BulkResetResult{}, err
	}
	if err != nil {
		l.Error("bulk reset hash password failed", zap.Error(err))
		return BulkResetResult{}, apperror.ErrInternal.WithErr(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("bulk reset begin tx failed", zap.Error(err))
		return BulkResetResult{}, apperror.ErrInternal.WithErr(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	employees, err := qtx.CountEmployees(ctx)
	if err != nil {
		l.Error("bulk reset count employees failed", zap.Error(err))
		return BulkResetResult{}, apperror.ErrInternal.WithErr(err)
	}

	deleted, err := qtx.DeleteAll(ctx)
	if err != nil {
		l.Error("bulk reset delete users failed", zap.Error(err))
		return BulkResetResult{}, apperror.ErrInternal.WithErr(err)
	}

	admin := &auth.User{
		Email:    req.Email,
		Password: hashed,
		Role:     rbac.RoleAdmin,
	}
	if err := s.users.WithTx(tx).Create(ctx, admin); err != nil {
		mapped := auth.MapRepositoryError(err)
		if errors.Is(mapped, autherrors.ErrEmailAlreadyRegistered) {
			return BulkResetResult{}, usererrors.ErrInvalidAdminEmail
		}
		l.Error("bulk reset create admin failed", zap.Error(err))
		return BulkResetResult{}, mapped
	}

	if err := tx.Commit(); err != nil {
		l.Error("bulk reset commit failed", zap.Error(err))
		return BulkResetResult{}, apperror.ErrInternal.WithErr(err)
	}

	l.Warn("bulk reset completed",
		zap.Int64("users_deleted", deleted),
		zap.Int64("employees_deleted", employees),
		zap.Int64("admin_id", admin.ID),
	)

	return BulkResetResult{
		UsersDeleted:     deleted,
		EmployeesDeleted: employees,
		AdminID:          admin.ID,
		AdminEmail:       admin.Email,
	}, nil
}
