package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnsphere/lms-service/internal/events"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/utils"
	"github.com/learnsphere/lms-service/internal/validator"
	"gorm.io/gorm"
)

// CourseService owns course authoring: metadata, lifecycle and the ordered
// content sections.
type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, userID string) (*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string, role models.UserRole) (*models.Course, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error
	Publish(ctx context.Context, id uint, userID string, role models.UserRole) error
	Archive(ctx context.Context, id uint, userID string, role models.UserRole) error

	// Sections
	AddSection(ctx context.Context, courseID uint, req *SectionRequest, userID string, role models.UserRole) (*models.CourseSection, error)
	UpdateSection(ctx context.Context, sectionID uint, req *SectionRequest, userID string, role models.UserRole) (*models.CourseSection, error)
	DeleteSection(ctx context.Context, sectionID uint, userID string, role models.UserRole) error
	ReorderSections(ctx context.Context, courseID uint, orders []repositories.SectionOrder, userID string, role models.UserRole) error

	// CanManage reports whether userID may modify the course.
	CanManage(ctx context.Context, courseID uint, userID string, role models.UserRole) (bool, error)
}

type courseService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, logger utils.Logger, v *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// ===== REQUEST STRUCTS =====

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceAmount int     `json:"price_amount" validate:"min=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceAmount *int    `json:"price_amount" validate:"omitempty,min=0"`
}

type SectionRequest struct {
	Title      string             `json:"title" validate:"required,min=1,max=200"`
	Type       models.SectionType `json:"type" validate:"omitempty,oneof=text video file"`
	Content    *string            `json:"content"`
	StorageKey *string            `json:"storage_key" validate:"omitempty,max=500"`
}

// ===== COURSE OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, userID string) (*models.Course, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.CourseDraft,
		PriceAmount: req.PriceAmount,
		CreatedBy:   userID,
	}
	if req.Currency != "" {
		course.Currency = req.Currency
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.InfoContext(ctx, "Course created", "course_id", course.ID, "user_id", userID)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) GetByIDWithDetails(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course details: %w", err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return s.repo.Course().List(ctx, filters)
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string, role models.UserRole) (*models.Course, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	course, err := s.requireManageable(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.PriceAmount != nil {
		course.PriceAmount = *req.PriceAmount
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	if _, err := s.requireManageable(ctx, id, userID, role); err != nil {
		return err
	}
	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.logger.InfoContext(ctx, "Course deleted", "course_id", id, "user_id", userID)
	return nil
}

func (s *courseService) Publish(ctx context.Context, id uint, userID string, role models.UserRole) error {
	course, err := s.requireManageable(ctx, id, userID, role)
	if err != nil {
		return err
	}
	if course.Status == models.CourseArchived {
		return ErrCourseNotEditable
	}

	if err := s.repo.Course().UpdateStatus(ctx, id, models.CoursePublished); err != nil {
		return fmt.Errorf("failed to publish course: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewCoursePublishedEvent(id, course.Title, userID)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish course event", "course_id", id, "error", err)
	}
	return nil
}

func (s *courseService) Archive(ctx context.Context, id uint, userID string, role models.UserRole) error {
	if _, err := s.requireManageable(ctx, id, userID, role); err != nil {
		return err
	}
	if err := s.repo.Course().UpdateStatus(ctx, id, models.CourseArchived); err != nil {
		return fmt.Errorf("failed to archive course: %w", err)
	}
	return nil
}

// ===== SECTION OPERATIONS =====

func (s *courseService) AddSection(ctx context.Context, courseID uint, req *SectionRequest, userID string, role models.UserRole) (*models.CourseSection, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if _, err := s.requireManageable(ctx, courseID, userID, role); err != nil {
		return nil, err
	}

	position, err := s.repo.Course().NextSectionPosition(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine section position: %w", err)
	}

	section := &models.CourseSection{
		CourseID:   courseID,
		Title:      req.Title,
		Type:       req.Type,
		Content:    req.Content,
		StorageKey: req.StorageKey,
		Position:   position,
	}
	if section.Type == "" {
		section.Type = models.SectionText
	}

	if err := s.repo.Course().CreateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return section, nil
}

func (s *courseService) UpdateSection(ctx context.Context, sectionID uint, req *SectionRequest, userID string, role models.UserRole) (*models.CourseSection, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	section, err := s.repo.Course().GetSection(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	if _, err := s.requireManageable(ctx, section.CourseID, userID, role); err != nil {
		return nil, err
	}

	section.Title = req.Title
	if req.Type != "" {
		section.Type = req.Type
	}
	section.Content = req.Content
	section.StorageKey = req.StorageKey

	if err := s.repo.Course().UpdateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	return section, nil
}

func (s *courseService) DeleteSection(ctx context.Context, sectionID uint, userID string, role models.UserRole) error {
	section, err := s.repo.Course().GetSection(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to get section: %w", err)
	}
	if _, err := s.requireManageable(ctx, section.CourseID, userID, role); err != nil {
		return err
	}
	return s.repo.Course().DeleteSection(ctx, sectionID)
}

// ReorderSections rewrites position indexes for the listed sections. The
// drag-and-drop UI sends the full new ordering.
func (s *courseService) ReorderSections(ctx context.Context, courseID uint, orders []repositories.SectionOrder, userID string, role models.UserRole) error {
	if len(orders) == 0 {
		return fmt.Errorf("%w: empty section order", ErrValidationFailed)
	}
	if _, err := s.requireManageable(ctx, courseID, userID, role); err != nil {
		return err
	}

	if err := s.repo.Course().ReorderSections(ctx, courseID, orders); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to reorder sections: %w", err)
	}

	s.logger.InfoContext(ctx, "Sections reordered", "course_id", courseID, "count", len(orders))
	return nil
}

// ===== HELPERS =====

func (s *courseService) CanManage(ctx context.Context, courseID uint, userID string, role models.UserRole) (bool, error) {
	if role == models.RoleSuperAdmin {
		return true, nil
	}
	if !role.CanManageCourses() {
		return false, nil
	}
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCourseNotFound
		}
		return false, err
	}
	return course.CreatedBy == userID, nil
}

func (s *courseService) requireManageable(ctx context.Context, courseID uint, userID string, role models.UserRole) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if role != models.RoleSuperAdmin && (course.CreatedBy != userID || !role.CanManageCourses()) {
		return nil, NewPermissionError(userID, courseID, "course", "manage", "not owner or insufficient role")
	}
	return course, nil
}
