package infra

import (
	_ "embed"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var modelText string

// NewEnforcer builds an enforcer over the embedded role/scope model and
// loads rules into it. Each rule is {role, resource, action, scope}.
func NewEnforcer(rules [][]string) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}

	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, err
		}
	}
	return e, nil
}
