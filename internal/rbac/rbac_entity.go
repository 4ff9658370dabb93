package rbac

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type Resource string

const (
	ResourceEmployee Resource = "employee"
	ResourceJob      Resource = "job"
	ResourceUser     Resource = "user"
)

type Action string

const (
	ActionList            Action = "list"
	ActionRead            Action = "read"
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionCompleteProfile Action = "complete_profile"
	ActionBulkReset       Action = "bulk_reset"
)

// Scope of a rule: "any" grants the action on every row, "own" only on rows
// owned by the caller.
const (
	ScopeAny = "any"
	ScopeOwn = "own"
)

// Identity is the authenticated caller as carried by a verified token.
type Identity struct {
	UserID int64
	Role   Role
}

// DefaultRules is the complete permission table. Roles are fixed at user
// creation, so the table is not stored in the database.
func DefaultRules() [][]string {
	return [][]string{
		{string(RoleAdmin), string(ResourceEmployee), string(ActionList), ScopeAny},
		{string(RoleAdmin), string(ResourceEmployee), string(ActionRead), ScopeAny},
		{string(RoleAdmin), string(ResourceEmployee), string(ActionCreate), ScopeAny},
		{string(RoleAdmin), string(ResourceEmployee), string(ActionUpdate), ScopeAny},
		{string(RoleAdmin), string(ResourceEmployee), string(ActionDelete), ScopeAny},
		{string(RoleAdmin), string(ResourceEmployee), string(ActionCompleteProfile), ScopeOwn},
		{string(RoleAdmin), string(ResourceJob), string(ActionList), ScopeAny},
		{string(RoleAdmin), string(ResourceUser), string(ActionBulkReset), ScopeAny},

		{string(RoleEmployee), string(ResourceEmployee), string(ActionRead), ScopeOwn},
		{string(RoleEmployee), string(ResourceEmployee), string(ActionCompleteProfile), ScopeOwn},
		{string(RoleEmployee), string(ResourceJob), string(ActionList), ScopeAny},
	}
}
