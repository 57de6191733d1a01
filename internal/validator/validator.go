package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/learnsphere/lms-service/internal/models"
)

// Validator wraps go-playground struct validation with the service's custom
// tags.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// ValidateStruct validates struct tags.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("course_status", validateCourseStatus)
	validate.RegisterValidation("passing_score", validatePassingScore)
	validate.RegisterValidation("option_count", validateOptionCount)

	// Report json tag names in field errors.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleUser, models.RoleCourseAdmin, models.RoleSuperAdmin:
		return true
	}
	return false
}

func validateCourseStatus(fl validator.FieldLevel) bool {
	switch models.CourseStatus(fl.Field().String()) {
	case models.CourseDraft, models.CoursePublished, models.CourseArchived:
		return true
	}
	return false
}

// Zero is a legal passing score: it turns grading off.
func validatePassingScore(fl validator.FieldLevel) bool {
	score := fl.Field().Int()
	return score >= 0 && score <= 100
}

func validateOptionCount(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	return field.Len() >= 2
}
