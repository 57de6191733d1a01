package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "Draft"
	CoursePublished CourseStatus = "Published"
	CourseArchived  CourseStatus = "Archived"
)

type Course struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Status      CourseStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,course_status"`

	// Pricing (minor units; zero means free)
	PriceAmount int    `json:"price_amount" gorm:"default:0" validate:"min=0"`
	Currency    string `json:"currency" gorm:"default:AED;size:3"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sections    []CourseSection `json:"sections" gorm:"foreignKey:CourseID"`
	Quizzes     []Quiz          `json:"quizzes" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment    `json:"enrollments" gorm:"foreignKey:CourseID"`
	Creator     User            `json:"creator" gorm:"foreignKey:CreatedBy"`

	// Computed fields (not stored)
	SectionCount    int `json:"section_count" gorm:"-"`
	EnrollmentCount int `json:"enrollment_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// IsFree reports whether the course can be enrolled without a payment.
func (c *Course) IsFree() bool {
	return c.PriceAmount == 0
}

type SectionType string

const (
	SectionText  SectionType = "text"
	SectionVideo SectionType = "video"
	SectionFile  SectionType = "file"
)

// CourseSection is one ordered content item within a course. Ordering is
// carried by Position; reordering rewrites positions for the whole course.
type CourseSection struct {
	ID       uint        `json:"id" gorm:"primaryKey"`
	CourseID uint        `json:"course_id" gorm:"not null;index:idx_course_position,priority:1"`
	Title    string      `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Type     SectionType `json:"type" gorm:"default:text;size:20" validate:"omitempty,oneof=text video file"`
	Content  *string     `json:"content" gorm:"type:text"`

	// Storage object key for video/file sections; the blob store itself is external.
	StorageKey *string `json:"storage_key" gorm:"size:500"`

	Position int `json:"position" gorm:"not null;index:idx_course_position,priority:2"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (CourseSection) TableName() string {
	return "course_sections"
}
