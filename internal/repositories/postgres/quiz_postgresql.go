package postgres

import (
	"context"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (r QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}

	quiz.QuestionCount = len(quiz.Questions)
	for _, q := range quiz.Questions {
		quiz.TotalPoints += q.Points
	}

	return &quiz, nil
}

func (r QuizPostgreSQL) GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Save(quiz).Error
}

func (r QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

// ===== QUESTIONS =====

func (r QuizPostgreSQL) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r QuizPostgreSQL) GetQuestion(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	var question models.QuizQuestion
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r QuizPostgreSQL) GetQuestions(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r QuizPostgreSQL) UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r QuizPostgreSQL) DeleteQuestion(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.QuizQuestion{}, id).Error
}
