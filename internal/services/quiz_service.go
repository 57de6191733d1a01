package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/utils"
	"github.com/learnsphere/lms-service/internal/validator"
	"gorm.io/gorm"
)

// QuizService owns quiz and question authoring.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, userID string, role models.UserRole) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string, role models.UserRole) (*models.Quiz, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error

	AddQuestion(ctx context.Context, quizID uint, req *QuestionRequest, userID string, role models.UserRole) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, questionID uint, req *QuestionRequest, userID string, role models.UserRole) (*models.QuizQuestion, error)
	DeleteQuestion(ctx context.Context, questionID uint, userID string, role models.UserRole) error

	// CanManage reports whether userID may modify the quiz (course owner).
	CanManage(ctx context.Context, quizID uint, userID string, role models.UserRole) (bool, error)
}

type quizService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ===== REQUEST STRUCTS =====

type CreateQuizRequest struct {
	CourseID    uint    `json:"course_id" validate:"required"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`

	// Zero disables grading.
	PassingScore int `json:"passing_score" validate:"passing_score"`
	Duration     int `json:"duration" validate:"min=0,max=300"`
	MaxAttempts  int `json:"max_attempts" validate:"min=0,max=10"`
}

type UpdateQuizRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	PassingScore *int    `json:"passing_score" validate:"omitempty,passing_score"`
	Duration     *int    `json:"duration" validate:"omitempty,min=0,max=300"`
	MaxAttempts  *int    `json:"max_attempts" validate:"omitempty,min=0,max=10"`
}

type QuestionRequest struct {
	Text          string   `json:"question_text" validate:"required,min=1"`
	Options       []string `json:"options" validate:"option_count"`
	CorrectOption int      `json:"correct_option" validate:"min=0"`
	Points        int      `json:"points" validate:"min=1,max=100"`
}

// ===== QUIZ OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, userID string, role models.UserRole) (*models.Quiz, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if err := s.requireCourseOwnership(ctx, req.CourseID, userID, role); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		CourseID:     req.CourseID,
		Title:        req.Title,
		Description:  req.Description,
		PassingScore: req.PassingScore,
		Duration:     req.Duration,
		MaxAttempts:  req.MaxAttempts,
		CreatedBy:    userID,
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.InfoContext(ctx, "Quiz created", "quiz_id", quiz.ID, "course_id", quiz.CourseID)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error) {
	return s.repo.Quiz().GetByCourse(ctx, courseID)
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string, role models.UserRole) (*models.Quiz, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	quiz, err := s.requireManageable(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.Duration != nil {
		quiz.Duration = *req.Duration
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	if _, err := s.requireManageable(ctx, id, userID, role); err != nil {
		return err
	}
	return s.repo.Quiz().Delete(ctx, id)
}

// ===== QUESTION OPERATIONS =====

func (s *quizService) AddQuestion(ctx context.Context, quizID uint, req *QuestionRequest, userID string, role models.UserRole) (*models.QuizQuestion, error) {
	if err := s.validateQuestion(req); err != nil {
		return nil, err
	}
	if _, err := s.requireManageable(ctx, quizID, userID, role); err != nil {
		return nil, err
	}

	existing, err := s.repo.Quiz().GetQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	question := &models.QuizQuestion{
		QuizID:        quizID,
		Text:          req.Text,
		CorrectOption: req.CorrectOption,
		Points:        req.Points,
		Position:      len(existing),
	}
	if err := question.SetOptions(req.Options); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	if err := s.repo.Quiz().CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, questionID uint, req *QuestionRequest, userID string, role models.UserRole) (*models.QuizQuestion, error) {
	if err := s.validateQuestion(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Quiz().GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if _, err := s.requireManageable(ctx, question.QuizID, userID, role); err != nil {
		return nil, err
	}

	question.Text = req.Text
	question.CorrectOption = req.CorrectOption
	question.Points = req.Points
	if err := question.SetOptions(req.Options); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	if err := s.repo.Quiz().UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, questionID uint, userID string, role models.UserRole) error {
	question, err := s.repo.Quiz().GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if _, err := s.requireManageable(ctx, question.QuizID, userID, role); err != nil {
		return err
	}
	return s.repo.Quiz().DeleteQuestion(ctx, questionID)
}

// ===== HELPERS =====

func (s *quizService) CanManage(ctx context.Context, quizID uint, userID string, role models.UserRole) (bool, error) {
	_, err := s.requireManageable(ctx, quizID, userID, role)
	if err != nil {
		var pe *PermissionError
		if errors.As(err, &pe) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *quizService) validateQuestion(req *QuestionRequest) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if req.CorrectOption >= len(req.Options) {
		return fmt.Errorf("%w: correct_option %d out of range for %d options",
			ErrQuestionMalformed, req.CorrectOption, len(req.Options))
	}
	return nil
}

func (s *quizService) requireManageable(ctx context.Context, quizID uint, userID string, role models.UserRole) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if err := s.requireCourseOwnership(ctx, quiz.CourseID, userID, role); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) requireCourseOwnership(ctx context.Context, courseID uint, userID string, role models.UserRole) error {
	if role == models.RoleSuperAdmin {
		return nil
	}
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}
	if !role.CanManageCourses() || course.CreatedBy != userID {
		return NewPermissionError(userID, courseID, "course", "manage_quizzes", "not owner or insufficient role")
	}
	return nil
}
