package postgres

import (
	"context"
	"errors"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (r EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r EnrollmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r EnrollmentPostgreSQL) Exists(ctx context.Context, userID string, courseID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r EnrollmentPostgreSQL) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	var enrollments []*models.Enrollment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
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

	if err := query.Preload("User").Preload("Course").
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

func (r EnrollmentPostgreSQL) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}

func (r EnrollmentPostgreSQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Enrollment{}, id).Error
}

// ===== CERTIFICATES =====

func (r EnrollmentPostgreSQL) CreateCertificate(ctx context.Context, certificate *models.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r EnrollmentPostgreSQL) GetCertificateByEnrollment(ctx context.Context, enrollmentID uint) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&certificate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

func (r EnrollmentPostgreSQL) GetCertificateBySerial(ctx context.Context, serial string) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Preload("Enrollment").
		Preload("Enrollment.Course").
		Preload("Enrollment.User").
		Where("serial_number = ?", serial).
		First(&certificate).Error; err != nil {
		return nil, err
	}
	return &certificate, nil
}
