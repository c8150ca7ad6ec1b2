package models

import "gorm.io/gorm"

// Role is the closed set of account roles.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt hash
	Name     string `gorm:"not null"`
	Role     Role   `gorm:"not null"`
}
