package models

import (
	"strings"
	"time"
)

// Role identifies which profile a user owns. It never changes after signup.
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleTeacher   Role = "TEACHER"
	RolePrincipal Role = "PRINCIPAL"
)

// ParseRole normalises a role string coming from tokens or query parameters.
func ParseRole(value string) (Role, bool) {
	switch role := Role(strings.ToUpper(strings.TrimSpace(value))); role {
	case RoleStudent, RoleTeacher, RolePrincipal:
		return role, true
	default:
		return "", false
	}
}

// User is the login identity shared by every role.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;uniqueIndex;not null" json:"user_id"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Role      Role      `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
