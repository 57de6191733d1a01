package postgres

import (
	"context"
	"errors"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (r AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r AttemptPostgreSQL) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}

func (r AttemptPostgreSQL) GetByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).Where("quiz_id = ?", quizID)
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("created_at DESC").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (r AttemptPostgreSQL) GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r AttemptPostgreSQL) CountByUserAndQuiz(ctx context.Context, userID string, quizID uint) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r AttemptPostgreSQL) GetCompletedByQuiz(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptCompleted).
		Order("completed_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
