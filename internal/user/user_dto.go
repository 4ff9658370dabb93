package user

// BulkResetRequest describes the single admin left after a reset.
type BulkResetRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Confirm  bool   `json:"confirm"`
}

type BulkResetResult struct {
	UsersDeleted     int64  `json:"users_deleted"`
	EmployeesDeleted int64  `json:"employees_deleted"`
	AdminID          int64  `json:"admin_id"`
	AdminEmail       string `json:"admin_email"`
}
