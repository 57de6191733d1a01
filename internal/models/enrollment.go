package models

import (
	"time"

	"gorm.io/gorm"
)

type EnrollmentSource string

const (
	EnrollmentFree  EnrollmentSource = "free"
	EnrollmentPaid  EnrollmentSource = "paid"
	EnrollmentAdmin EnrollmentSource = "admin"
)

type Enrollment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_course"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`

	Source EnrollmentSource `json:"source" gorm:"default:free;size:10"`

	// Progress is the fraction of sections completed, in [0,100].
	Progress    float64    `json:"progress" gorm:"default:0"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// Certificate records a completion certificate issued for an enrollment.
// Rendering the PDF is a delivery concern handled outside this service.
type Certificate struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	EnrollmentID uint   `json:"enrollment_id" gorm:"not null;uniqueIndex"`
	SerialNumber string `json:"serial_number" gorm:"not null;uniqueIndex;size:64"`

	IssuedAt  time.Time `json:"issued_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Enrollment Enrollment `json:"enrollment" gorm:"foreignKey:EnrollmentID"`
}

func (Certificate) TableName() string {
	return "certificates"
}
