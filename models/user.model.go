package models

import "time"

const (
	RoleInstructor = "INSTRUCTOR"
	RoleStudent    = "STUDENT"
)

// User rows are never soft-deleted; dependent rows go away through the
// storage engine's ON DELETE CASCADE constraints.
type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      string    `json:"role" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRole reports whether role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleInstructor || role == RoleStudent
}
