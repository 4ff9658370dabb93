package employee

// EmployeeRequest carries the mutable profile fields. It is used for admin
// create, admin update (full replace) and profile completion.
type EmployeeRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"omitempty,max=50"`
	Address   string `json:"address" binding:"omitempty,max=500"`
	BirthDate string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	JobID     *int64 `json:"job_id" binding:"omitempty,gt=0"`
}

type EmployeeResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	BirthDate *string `json:"birth_date"`
	StartDate *string `json:"start_date"`
	JobID     *int64  `json:"job_id"`
	JobTitle  *string `json:"job_title"`
	UserID    int64   `json:"user_id"`
	UserEmail string  `json:"user_email"`
}

// CreateEmployeeResponse is returned once to the admin. TempPassword is
// never stored in clear and cannot be retrieved again.
type CreateEmployeeResponse struct {
	Employee     EmployeeResponse `json:"employee"`
	TempPassword string           `json:"tempPassword"`
}
