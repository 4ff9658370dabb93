package rbac_test

import (
	"errors"
	"testing"

	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/rbac/infra"
	"go-employee-mgmt/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) rbac.Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer(rbac.DefaultRules())
	assert.NoError(t, err)
	return rbac.NewService(enforcer)
}

type failingEnforcer struct{}

func (failingEnforcer) Enforce(...interface{}) (bool, error) {
	return false, errors.New("matcher broken")
}

func TestRBACService_Authorize(t *testing.T) {
	svc := newTestService(t)
	admin := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}
	emp := rbac.Identity{UserID: 2, Role: rbac.RoleEmployee}

	tests := []struct {
		name     string
		id       rbac.Identity
		resource rbac.Resource
		action   rbac.Action
		allowed  bool
	}{
		{"admin lists employees", admin, rbac.ResourceEmployee, rbac.ActionList, true},
		{"admin creates employee", admin, rbac.ResourceEmployee, rbac.ActionCreate, true},
		{"admin updates employee", admin, rbac.ResourceEmployee, rbac.ActionUpdate, true},
		{"admin deletes employee", admin, rbac.ResourceEmployee, rbac.ActionDelete, true},
		{"admin lists jobs", admin, rbac.ResourceJob, rbac.ActionList, true},
		{"admin bulk resets users", admin, rbac.ResourceUser, rbac.ActionBulkReset, true},
		{"employee lists jobs", emp, rbac.ResourceJob, rbac.ActionList, true},
		{"employee reads (own) employee", emp, rbac.ResourceEmployee, rbac.ActionRead, true},
		{"employee completes profile", emp, rbac.ResourceEmployee, rbac.ActionCompleteProfile, true},
		{"employee cannot list", emp, rbac.ResourceEmployee, rbac.ActionList, false},
		{"employee cannot create", emp, rbac.ResourceEmployee, rbac.ActionCreate, false},
		{"employee cannot update", emp, rbac.ResourceEmployee, rbac.ActionUpdate, false},
		{"employee cannot delete", emp, rbac.ResourceEmployee, rbac.ActionDelete, false},
		{"employee cannot bulk reset", emp, rbac.ResourceUser, rbac.ActionBulkReset, false},
		{"unknown role", rbac.Identity{UserID: 3, Role: "manager"}, rbac.ResourceJob, rbac.ActionList, false},
		{"missing user id", rbac.Identity{Role: rbac.RoleAdmin}, rbac.ResourceJob, rbac.ActionList, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authorize(tt.id, tt.resource, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperror.ErrForbidden)
			}
		})
	}
}

func TestRBACService_AuthorizeOwner(t *testing.T) {
	svc := newTestService(t)
	admin := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}
	emp := rbac.Identity{UserID: 2, Role: rbac.RoleEmployee}

	t.Run("employee reads own row", func(t *testing.T) {
		assert.NoError(t, svc.AuthorizeOwner(emp, rbac.ResourceEmployee, rbac.ActionRead, 2))
	})

	t.Run("employee reads another row", func(t *testing.T) {
		err := svc.AuthorizeOwner(emp, rbac.ResourceEmployee, rbac.ActionRead, 7)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("admin reads any row", func(t *testing.T) {
		assert.NoError(t, svc.AuthorizeOwner(admin, rbac.ResourceEmployee, rbac.ActionRead, 7))
	})

	t.Run("employee completes profile for someone else", func(t *testing.T) {
		err := svc.AuthorizeOwner(emp, rbac.ResourceEmployee, rbac.ActionCompleteProfile, 7)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("zero owner is never owned", func(t *testing.T) {
		err := svc.AuthorizeOwner(emp, rbac.ResourceEmployee, rbac.ActionRead, 0)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestRBACService_EnforcerError(t *testing.T) {
	svc := rbac.NewService(failingEnforcer{})

	err := svc.Authorize(rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}, rbac.ResourceJob, rbac.ActionList)

	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.True(t, apperror.IsInternal(err))
}
