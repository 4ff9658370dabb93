package employee

import (
	"time"
)

type Employee struct {
	ID        int64         `gorm:"primaryKey;autoIncrement"`
	FirstName string        `gorm:"type:varchar(100);not null"`
	LastName  string        `gorm:"type:varchar(100);not null"`
	Email     string        `gorm:"type:varchar(255);not null"`
	Phone     string        `gorm:"type:varchar(50)"`
	Address   string        `gorm:"type:text"`
	BirthDate *time.Time    `gorm:"type:date"`
	StartDate *time.Time    `gorm:"type:date"`
	JobID     *int64        `gorm:"index"`
	Job       *EmployeeJob  `gorm:"foreignKey:JobID;references:ID"`
	UserID    int64         `gorm:"not null;uniqueIndex:uq_employees_user_id"`
	User      *EmployeeUser `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt time.Time     `gorm:"autoCreateTime"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime"`
}

type EmployeeJob struct {
	ID    int64  `gorm:"primaryKey"`
	Title string `gorm:"column:title"`
}

func (EmployeeJob) TableName() string {
	return "jobs"
}

type EmployeeUser struct {
	ID    int64  `gorm:"primaryKey"`
	Email string `gorm:"column:email"`
}

func (EmployeeUser) TableName() string {
	return "users"
}
