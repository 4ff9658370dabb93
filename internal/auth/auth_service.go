package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "go-employee-mgmt/internal/auth/errors"
	"go-employee-mgmt/internal/auth/token"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/contextutil"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context, userID int64) (MeResponse, error)
	Logout(ctx context.Context, claims *token.Claims) error
	Authenticate(ctx context.Context, raw string) (*token.Claims, error)
}

type service struct {
	repo        Repository
	tokens      *token.Manager
	revocations RevocationStore
	bcryptCost  int
	logger      *zap.Logger
}

// NewService wires the authentication service. revocations may be nil, in
// which case logout only discards the token client-side.
func NewService(
	repo Repository,
	tokens *token.Manager,
	revocations RevocationStore,
	bcryptCost int,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &service{
		repo:        repo,
		tokens:      tokens,
		revocations: revocations,
		bcryptCost:  bcryptCost,
		logger:      l,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (TokenResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	email := NormalizeEmail(req.Email)

	hashed, err := HashPassword(req.Password, s.bcryptCost)
	if errors.Is(err, autherrors.ErrPasswordTooLong) {
		l.Info("register password too long", zap.String("email", email))
		return TokenResponse{}, err
	}
	if err != nil {
		l.Error("register hash password failed", zap.Error(err))
		return TokenResponse{}, apperror.ErrInternal.WithErr(err)
	}

	user := &User{
		Email:    email,
		Password: hashed,
		Role:     rbac.RoleEmployee,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		mapped := MapRepositoryError(err)
		if errors.Is(mapped, autherrors.ErrEmailAlreadyRegistered) {
			l.Info("register duplicate email", zap.String("email", email))
		} else {
			l.Error("register persist failed", zap.Error(err))
		}
		return TokenResponse{}, mapped
	}

	raw, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("register issue token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return TokenResponse{}, err
	}

	l.Info("user registered", zap.Int64("user_id", user.ID))
	return TokenResponse{Token: raw}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	email := NormalizeEmail(req.Email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		mapped := MapRepositoryError(err)
		if errors.Is(mapped, autherrors.ErrUserNotFound) {
			l.Info("login unknown email")
			return TokenResponse{}, autherrors.ErrInvalidCredentials
		}
		l.Error("login lookup failed", zap.Error(err))
		return TokenResponse{}, mapped
	}

	if !CheckPassword(user.Password, req.Password) {
		l.Info("login wrong password", zap.Int64("user_id", user.ID))
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	raw, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("login issue token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return TokenResponse{}, err
	}

	return TokenResponse{Token: raw}, nil
}

func (s *service) Me(ctx context.Context, userID int64) (MeResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return MeResponse{}, MapRepositoryError(err)
	}

	return MeResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}, nil
}

func (s *service) Logout(ctx context.Context, claims *token.Claims) error {
	if s.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("logout revoke token failed",
			zap.Int64("user_id", claims.UserID),
			zap.Error(err),
		)
		return autherrors.ErrTokenCheckUnavailable.WithErr(err)
	}
	return nil
}

// Authenticate verifies signature and expiry, then consults the revocation
// set when one is configured. A revocation lookup failure rejects the token.
func (s *service) Authenticate(ctx context.Context, raw string) (*token.Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("revocation lookup failed", zap.Error(err))
			return nil, autherrors.ErrTokenCheckUnavailable.WithErr(err)
		}
		if revoked {
			return nil, autherrors.ErrTokenRevoked
		}
	}

	return claims, nil
}
