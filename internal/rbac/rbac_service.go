package rbac

import (
	"go-employee-mgmt/internal/shared/apperror"

	"go.uber.org/zap"
)

// Service is the authorization policy. It never touches storage, so every
// caller can consult it before loading anything.
type Service interface {
	// Authorize allows the call when the role holds the action on at least
	// the caller's own rows. Ownership is checked later with AuthorizeOwner.
	Authorize(id Identity, resource Resource, action Action) error
	// AuthorizeOwner decides for a concrete row owned by ownerID.
	AuthorizeOwner(id Identity, resource Resource, action Action, ownerID int64) error
}

// Enforcer is the part of a casbin enforcer the policy needs.
type Enforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

type service struct {
	enforcer Enforcer
	logger   *zap.Logger
}

func NewService(enforcer Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

func (s *service) Authorize(id Identity, resource Resource, action Action) error {
	return s.enforce(id, resource, action, true)
}

func (s *service) AuthorizeOwner(id Identity, resource Resource, action Action, ownerID int64) error {
	return s.enforce(id, resource, action, ownerID != 0 && ownerID == id.UserID)
}

func (s *service) enforce(id Identity, resource Resource, action Action, owned bool) error {
	if !id.Role.Valid() || id.UserID == 0 {
		return apperror.ErrForbidden
	}

	ownedArg := "false"
	if owned {
		ownedArg = "true"
	}

	allowed, err := s.enforcer.Enforce(string(id.Role), string(resource), string(action), ownedArg)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.Int64("user_id", id.UserID),
			zap.String("role", string(id.Role)),
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return apperror.ErrInternal.WithErr(err)
	}

	if !allowed {
		s.logger.Debug("rbac denied",
			zap.Int64("user_id", id.UserID),
			zap.String("role", string(id.Role)),
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
			zap.Bool("owned", owned),
		)
		return apperror.ErrForbidden
	}
	return nil
}
