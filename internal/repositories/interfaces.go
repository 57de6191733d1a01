package repositories

import (
	"context"
	"time"

	"github.com/learnsphere/lms-service/internal/models"
)

// Repository bundles all aggregate repositories behind one dependency.
type Repository interface {
	Course() CourseRepository
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Enrollment() EnrollmentRepository
	Payment() PaymentRepository
	User() UserRepository

	// WithTx runs fn with a Repository bound to a single transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status    *models.CourseStatus `json:"status"`
	CreatedBy *string              `json:"created_by"`
	Search    string               `json:"search"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Status   models.AttemptStatus `json:"status"`
	UserID   *string              `json:"user_id"`
	DateFrom *time.Time           `json:"date_from"`
	DateTo   *time.Time           `json:"date_to"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

type EnrollmentFilters struct {
	CourseID *uint   `json:"course_id"`
	UserID   *string `json:"user_id"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

// SectionOrder carries one section's target position during a reorder.
type SectionOrder struct {
	SectionID uint `json:"section_id" validate:"required"`
	Position  int  `json:"position" validate:"min=0"`
}

// ===== INTERFACES =====

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.CourseStatus) error

	// Sections
	CreateSection(ctx context.Context, section *models.CourseSection) error
	GetSection(ctx context.Context, id uint) (*models.CourseSection, error)
	GetSections(ctx context.Context, courseID uint) ([]*models.CourseSection, error)
	UpdateSection(ctx context.Context, section *models.CourseSection) error
	DeleteSection(ctx context.Context, id uint) error
	ReorderSections(ctx context.Context, courseID uint, orders []SectionOrder) error
	NextSectionPosition(ctx context.Context, courseID uint) (int, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error

	// Questions
	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	GetQuestion(ctx context.Context, id uint) (*models.QuizQuestion, error)
	GetQuestions(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error
	DeleteQuestion(ctx context.Context, id uint) error
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	Update(ctx context.Context, attempt *models.QuizAttempt) error

	GetByQuiz(ctx context.Context, quizID uint, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error)
	GetActiveAttempt(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error)
	CountByUserAndQuiz(ctx context.Context, userID string, quizID uint) (int, error)

	// GetCompletedByQuiz returns completed attempts ordered by completion
	// time descending; this is the aggregator's input query.
	GetCompletedByQuiz(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (*models.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error)
	Exists(ctx context.Context, userID string, courseID uint) (bool, error)
	List(ctx context.Context, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id uint) error

	// Certificates
	CreateCertificate(ctx context.Context, certificate *models.Certificate) error
	GetCertificateByEnrollment(ctx context.Context, enrollmentID uint) (*models.Certificate, error)
	GetCertificateBySerial(ctx context.Context, serial string) (*models.Certificate, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	MarkProcessed(ctx context.Context, id uint, processedAt time.Time) error
	GetByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}
