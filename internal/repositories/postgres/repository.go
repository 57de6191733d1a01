package postgres

import (
	"context"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db         *gorm.DB
	course     repositories.CourseRepository
	quiz       repositories.QuizRepository
	attempt    repositories.AttemptRepository
	enrollment repositories.EnrollmentRepository
	payment    repositories.PaymentRepository
	user       repositories.UserRepository
}

// NewRepository wires all PostgreSQL repositories around one gorm handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		course:     NewCoursePostgreSQL(db),
		quiz:       NewQuizPostgreSQL(db),
		attempt:    NewAttemptPostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		payment:    NewPaymentPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *repository) Course() repositories.CourseRepository         { return r.course }
func (r *repository) Quiz() repositories.QuizRepository             { return r.quiz }
func (r *repository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *repository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *repository) Payment() repositories.PaymentRepository       { return r.payment }
func (r *repository) User() repositories.UserRepository             { return r.user }

func (r *repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// AutoMigrate creates or updates the schema for all models this service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseSection{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.Enrollment{},
		&models.Certificate{},
		&models.Payment{},
	)
}
