// Package user manages accounts, authentication and the employee/admin
// role model.
package user

import "time"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is a known account role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

// User is the users table model. PasswordHash never leaves the package
// boundary in API responses.
type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Name         string `gorm:"size:128;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	Role         string `gorm:"type:varchar(16);not null" json:"role"`
	Phone        string `gorm:"size:32" json:"phone"`
	DealershipID string `gorm:"index;size:36" json:"dealership_id"`

	// free-form UI preference document (contrast, font size, ...)
	AccessibilityPrefs string `gorm:"type:text" json:"accessibility_prefs"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
