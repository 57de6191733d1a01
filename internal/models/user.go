package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser        UserRole = "user"
	RoleCourseAdmin UserRole = "course_admin"
	RoleSuperAdmin  UserRole = "superadmin"
)

// CanManageCourses reports whether the role is allowed to author courses.
func (r UserRole) CanManageCourses() bool {
	return r == RoleCourseAdmin || r == RoleSuperAdmin
}

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"default:user;size:20;index" validate:"omitempty,user_role"`

	// Profile info
	AvatarURL   *string `json:"avatar_url" gorm:"size:500"`
	PhoneNumber *string `json:"phone_number" gorm:"size:20"`

	// Status
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
