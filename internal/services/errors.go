package services

import (
	"errors"
	"fmt"

	apperrors "github.com/learnsphere/lms-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Course specific errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseAccessDenied = errors.New("access denied to course")
	ErrCourseNotEditable  = errors.New("course cannot be edited in current status")
	ErrCourseNotPublished = errors.New("course is not published")
	ErrSectionNotFound    = errors.New("section not found")

	// Quiz specific errors
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizAccessDenied  = errors.New("access denied to quiz")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrQuestionMalformed = errors.New("question options or correct option invalid")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAccessDenied     = errors.New("access denied to attempt")
	ErrAttemptNotActive        = errors.New("attempt is not active")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptLimitExceeded    = errors.New("maximum attempts exceeded")
	ErrAttemptInProgressExists = errors.New("an attempt is already in progress")

	// Enrollment specific errors
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("user already enrolled in course")
	ErrEnrollmentRequired = errors.New("enrollment required")
	ErrCourseNotFree      = errors.New("course requires payment")
	ErrCourseNotCompleted = errors.New("course not completed")

	// Payment specific errors
	ErrPaymentNotCompleted = errors.New("payment intent is not completed")
	ErrPaymentMismatch     = errors.New("payment intent does not match course")
	ErrCertificateExists   = errors.New("certificate already issued")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrCourseAccessDenied) ||
		errors.Is(err, ErrQuizAccessDenied) ||
		errors.Is(err, ErrAttemptAccessDenied) ||
		errors.Is(err, ErrEnrollmentRequired) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrQuestionMalformed) ||
		errors.Is(err, ErrCourseNotFree) ||
		errors.Is(err, ErrCourseNotPublished) ||
		errors.Is(err, ErrPaymentMismatch) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrAttemptLimitExceeded) ||
		errors.Is(err, ErrAttemptInProgressExists) ||
		errors.Is(err, ErrCertificateExists) ||
		errors.Is(err, ErrCourseNotEditable) ||
		errors.Is(err, ErrCourseNotCompleted) ||
		errors.Is(err, ErrPaymentNotCompleted)
}
