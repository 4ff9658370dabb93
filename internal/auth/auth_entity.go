package auth

import (
	"time"

	"go-employee-mgmt/internal/rbac"
)

// User is a credential row. Role is written once at insert time; no code path updates it.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email"`
	Password  string    `gorm:"type:varchar(255);not null"`
	Role      rbac.Role `gorm:"type:varchar(20);not null;default:'employee'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
