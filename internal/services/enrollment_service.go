package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/learnsphere/lms-service/internal/events"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/utils"
	"gorm.io/gorm"
)

// EnrollmentService owns enrollment, progress tracking and certificate
// issuance. Paid enrollment goes through PaymentService instead.
type EnrollmentService interface {
	// Enroll signs the user up for a free published course.
	Enroll(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error)

	// AdminEnroll enrolls a user regardless of price; BulkAdminEnroll does the
	// same for a batch and reports per-user failures without aborting.
	AdminEnroll(ctx context.Context, targetUserID string, courseID uint, adminID string, role models.UserRole) (*models.Enrollment, error)
	BulkAdminEnroll(ctx context.Context, userIDs []string, courseID uint, adminID string, role models.UserRole) (*BulkEnrollResult, error)

	GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error)
	List(ctx context.Context, filters repositories.EnrollmentFilters, userID string, role models.UserRole) ([]*models.Enrollment, int64, error)
	UpdateProgress(ctx context.Context, userID string, courseID uint, progress float64) (*models.Enrollment, error)

	// Certificates
	IssueCertificate(ctx context.Context, userID string, courseID uint) (*models.Certificate, error)
	GetCertificateBySerial(ctx context.Context, serial string) (*models.Certificate, error)
}

// BulkEnrollResult reports the outcome of a batch enrollment.
type BulkEnrollResult struct {
	Enrolled []string          `json:"enrolled"`
	Failed   map[string]string `json:"failed"`
}

type enrollmentService struct {
	repo      repositories.Repository
	logger    utils.Logger
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, logger utils.Logger, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Status != models.CoursePublished {
		return nil, ErrCourseNotPublished
	}
	if !course.IsFree() {
		return nil, ErrCourseNotFree
	}

	return s.createEnrollment(ctx, userID, courseID, models.EnrollmentFree)
}

func (s *enrollmentService) AdminEnroll(ctx context.Context, targetUserID string, courseID uint, adminID string, role models.UserRole) (*models.Enrollment, error) {
	if !role.CanManageCourses() {
		return nil, NewPermissionError(adminID, courseID, "course", "admin_enroll", "insufficient role")
	}
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrollment, err := s.createEnrollment(ctx, targetUserID, courseID, models.EnrollmentAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Admin enrollment", "user_id", targetUserID, "course_id", courseID, "admin_id", adminID)
	return enrollment, nil
}

func (s *enrollmentService) BulkAdminEnroll(ctx context.Context, userIDs []string, courseID uint, adminID string, role models.UserRole) (*BulkEnrollResult, error) {
	if !role.CanManageCourses() {
		return nil, NewPermissionError(adminID, courseID, "course", "admin_enroll", "insufficient role")
	}
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	result := &BulkEnrollResult{Failed: make(map[string]string)}
	for _, userID := range userIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, err := s.createEnrollment(ctx, userID, courseID, models.EnrollmentAdmin); err != nil {
			result.Failed[userID] = err.Error()
			continue
		}
		result.Enrolled = append(result.Enrolled, userID)
	}

	s.logger.InfoContext(ctx, "Bulk enrollment finished",
		"course_id", courseID,
		"enrolled", len(result.Enrolled),
		"failed", len(result.Failed))
	return result, nil
}

func (s *enrollmentService) GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *enrollmentService) List(ctx context.Context, filters repositories.EnrollmentFilters, userID string, role models.UserRole) ([]*models.Enrollment, int64, error) {
	// Plain users only see their own enrollments.
	if !role.CanManageCourses() {
		filters.UserID = &userID
	}
	return s.repo.Enrollment().List(ctx, filters)
}

func (s *enrollmentService) UpdateProgress(ctx context.Context, userID string, courseID uint, progress float64) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: progress must be in [0,100]", ErrValidationFailed)
	}

	enrollment, err := s.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	// Progress never moves backwards.
	if progress > enrollment.Progress {
		enrollment.Progress = progress
	}
	if enrollment.Progress >= 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := s.repo.Enrollment().Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return enrollment, nil
}

// ===== CERTIFICATES =====

func (s *enrollmentService) IssueCertificate(ctx context.Context, userID string, courseID uint) (*models.Certificate, error) {
	enrollment, err := s.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment.CompletedAt == nil {
		return nil, ErrCourseNotCompleted
	}

	existing, err := s.repo.Enrollment().GetCertificateByEnrollment(ctx, enrollment.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check certificate: %w", err)
	}
	if existing != nil {
		return nil, ErrCertificateExists
	}

	certificate := &models.Certificate{
		EnrollmentID: enrollment.ID,
		SerialNumber: uuid.NewString(),
		IssuedAt:     time.Now(),
	}
	if err := s.repo.Enrollment().CreateCertificate(ctx, certificate); err != nil {
		return nil, fmt.Errorf("failed to issue certificate: %w", err)
	}

	event := events.NewCertificateIssuedEvent(certificate.ID, enrollment.ID, certificate.SerialNumber)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish certificate event", "certificate_id", certificate.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "Certificate issued",
		"certificate_id", certificate.ID,
		"enrollment_id", enrollment.ID,
		"serial", certificate.SerialNumber)
	return certificate, nil
}

func (s *enrollmentService) GetCertificateBySerial(ctx context.Context, serial string) (*models.Certificate, error) {
	certificate, err := s.repo.Enrollment().GetCertificateBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return certificate, nil
}

// ===== HELPERS =====

func (s *enrollmentService) createEnrollment(ctx context.Context, userID string, courseID uint, source models.EnrollmentSource) (*models.Enrollment, error) {
	exists, err := s.repo.Enrollment().Exists(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Source:   source,
	}
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	event := events.NewEnrollmentCreatedEvent(enrollment.ID, courseID, userID, string(source))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish enrollment event", "enrollment_id", enrollment.ID, "error", err)
	}
	return enrollment, nil
}
