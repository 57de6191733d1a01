package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is one verified payment intent for a course. IntentID is the
// gateway-side identifier; a unique index on it is what keeps verification
// idempotent.
type Payment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"not null;index;size:255"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`

	IntentID string        `json:"intent_id" gorm:"not null;uniqueIndex;size:255"`
	Amount   int           `json:"amount" gorm:"not null"` // minor units
	Currency string        `json:"currency" gorm:"not null;size:3"`
	Status   PaymentStatus `json:"status" gorm:"default:pending;index"`

	// Processed marks that the enrollment side effect has been applied.
	Processed   bool       `json:"processed" gorm:"default:false"`
	ProcessedAt *time.Time `json:"processed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

func (Payment) TableName() string {
	return "payments"
}
