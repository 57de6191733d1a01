package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnsphere/lms-service/internal/cache"
	"github.com/learnsphere/lms-service/internal/events"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/utils"
	"gorm.io/gorm"
)

// AttemptService owns the attempt lifecycle: start, submit with automatic
// scoring, and retrieval.
type AttemptService interface {
	Start(ctx context.Context, quizID uint, userID string) (*models.QuizAttempt, error)
	Submit(ctx context.Context, attemptID uint, answers map[uint]int, userID string) (*models.QuizAttempt, error)
	GetByID(ctx context.Context, attemptID uint, userID string, role models.UserRole) (*models.QuizAttempt, error)
	GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error)
	GetByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters, userID string, role models.UserRole) ([]*models.QuizAttempt, int64, error)
}

type attemptService struct {
	repo      repositories.Repository
	logger    utils.Logger
	cache     cache.CacheService
	publisher events.EventPublisher
}

func NewAttemptService(repo repositories.Repository, logger utils.Logger, c cache.CacheService, publisher events.EventPublisher) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		cache:     c,
		publisher: publisher,
	}
}

func (s *attemptService) Start(ctx context.Context, quizID uint, userID string) (*models.QuizAttempt, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	enrolled, err := s.repo.Enrollment().Exists(ctx, userID, quiz.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrEnrollmentRequired
	}

	active, err := s.repo.Attempt().GetActiveAttempt(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}
	if active != nil {
		return nil, ErrAttemptInProgressExists
	}

	if quiz.MaxAttempts > 0 {
		count, err := s.repo.Attempt().CountByUserAndQuiz(ctx, userID, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to count attempts: %w", err)
		}
		if count >= quiz.MaxAttempts {
			return nil, ErrAttemptLimitExceeded
		}
	}

	now := time.Now()
	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		UserID:    userID,
		Status:    models.AttemptInProgress,
		StartedAt: &now,
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.InfoContext(ctx, "Attempt started", "attempt_id", attempt.ID, "quiz_id", quizID, "user_id", userID)
	return attempt, nil
}

// Submit records the answer map, scores it against the quiz questions and
// completes the attempt.
func (s *attemptService) Submit(ctx context.Context, attemptID uint, answers map[uint]int, userID string) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptAccessDenied
	}
	if attempt.Status == models.AttemptCompleted {
		return nil, ErrAttemptAlreadySubmitted
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotActive
	}

	questions, err := s.repo.Quiz().GetQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	score, maxScore := scoreAnswers(questions, answers)

	now := time.Now()
	attempt.Status = models.AttemptCompleted
	attempt.CompletedAt = &now
	attempt.Score = score
	attempt.MaxScore = maxScore
	if err := attempt.SetAnswers(answers); err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}

	// The cached report for this quiz is stale now.
	if err := s.cache.Delete(ctx, quizStatsCacheKey(attempt.QuizID)); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate stats cache", "quiz_id", attempt.QuizID, "error", err)
	}

	event := events.NewAttemptCompletedEvent(attempt.ID, attempt.QuizID, userID, score, maxScore)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish attempt event", "attempt_id", attempt.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "Attempt submitted",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"score", score,
		"max_score", maxScore)
	return attempt, nil
}

func (s *attemptService) GetByID(ctx context.Context, attemptID uint, userID string, role models.UserRole) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID && !role.CanManageCourses() {
		return nil, ErrAttemptAccessDenied
	}
	return attempt, nil
}

func (s *attemptService) GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error) {
	return s.repo.Attempt().GetByUserAndQuiz(ctx, userID, quizID)
}

func (s *attemptService) GetByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters, userID string, role models.UserRole) ([]*models.QuizAttempt, int64, error) {
	if err := s.requireQuizOwnership(ctx, quizID, userID, role); err != nil {
		return nil, 0, err
	}
	return s.repo.Attempt().GetByQuiz(ctx, quizID, filters)
}

// ===== HELPERS =====

// scoreAnswers sums points for exact matches with each question's correct
// option. Unanswered questions earn nothing but still count toward the max.
func scoreAnswers(questions []*models.QuizQuestion, answers map[uint]int) (score, maxScore float64) {
	for _, q := range questions {
		maxScore += float64(q.Points)
		selected, answered := answers[q.ID]
		if answered && selected == q.CorrectOption {
			score += float64(q.Points)
		}
	}
	return score, maxScore
}

func (s *attemptService) requireQuizOwnership(ctx context.Context, quizID uint, userID string, role models.UserRole) error {
	if role == models.RoleSuperAdmin {
		return nil
	}
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	course, err := s.repo.Course().GetByID(ctx, quiz.CourseID)
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	if !role.CanManageCourses() || course.CreatedBy != userID {
		return NewPermissionError(userID, quizID, "quiz", "view_attempts", "not owner or insufficient role")
	}
	return nil
}
