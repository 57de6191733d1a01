package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (r CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r CoursePostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Quizzes").
		Preload("Creator").
		First(&course, id).Error; err != nil {
		return nil, err
	}

	course.SectionCount = len(course.Sections)

	var enrollments int64
	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", id).
		Count(&enrollments).Error; err != nil {
		return nil, err
	}
	course.EnrollmentCount = int(enrollments)

	return &course, nil
}

func (r CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r CoursePostgreSQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Course{}, id).Error
}

func (r CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Course{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applyPaginationAndSort(query, filters)
	if err := query.Preload("Creator").Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r CoursePostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.CourseStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ===== SECTIONS =====

func (r CoursePostgreSQL) CreateSection(ctx context.Context, section *models.CourseSection) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r CoursePostgreSQL) GetSection(ctx context.Context, id uint) (*models.CourseSection, error) {
	var section models.CourseSection
	if err := r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r CoursePostgreSQL) GetSections(ctx context.Context, courseID uint) ([]*models.CourseSection, error) {
	var sections []*models.CourseSection
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r CoursePostgreSQL) UpdateSection(ctx context.Context, section *models.CourseSection) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r CoursePostgreSQL) DeleteSection(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CourseSection{}, id).Error
}

// ReorderSections rewrites section positions in one transaction. Sections
// not listed keep their current position.
func (r CoursePostgreSQL) ReorderSections(ctx context.Context, courseID uint, orders []repositories.SectionOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			result := tx.Model(&models.CourseSection{}).
				Where("id = ? AND course_id = ?", order.SectionID, courseID).
				Update("position", order.Position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("section %d not found in course %d: %w",
					order.SectionID, courseID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

func (r CoursePostgreSQL) NextSectionPosition(ctx context.Context, courseID uint) (int, error) {
	var maxPosition *int
	err := r.db.WithContext(ctx).
		Model(&models.CourseSection{}).
		Where("course_id = ?", courseID).
		Select("MAX(position)").
		Scan(&maxPosition).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if maxPosition == nil {
		return 0, nil
	}
	return *maxPosition + 1, nil
}

// ===== HELPERS =====

func (r CoursePostgreSQL) applyFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}

func (r CoursePostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "title", "created_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
