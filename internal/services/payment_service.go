package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/learnsphere/lms-service/internal/events"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/payment"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/utils"
	"gorm.io/gorm"
)

// PaymentService reconciles gateway payment intents into enrollments. The
// checkout flow happens on the client against the gateway directly; the
// client then reports the intent id here for verification.
type PaymentService interface {
	// VerifyAndEnroll checks the intent with the gateway, records the payment
	// and enrolls the user. Calling it twice with the same intent returns the
	// already-recorded payment without a second enrollment.
	VerifyAndEnroll(ctx context.Context, userID string, courseID uint, intentID string) (*models.Payment, error)

	GetByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}

type paymentService struct {
	repo      repositories.Repository
	gateway   payment.Gateway
	logger    utils.Logger
	publisher events.EventPublisher
}

func NewPaymentService(repo repositories.Repository, gateway payment.Gateway, logger utils.Logger, publisher events.EventPublisher) PaymentService {
	return &paymentService{
		repo:      repo,
		gateway:   gateway,
		logger:    logger,
		publisher: publisher,
	}
}

func (s *paymentService) VerifyAndEnroll(ctx context.Context, userID string, courseID uint, intentID string) (*models.Payment, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: intent id required", ErrValidationFailed)
	}

	// Idempotency: a recorded intent means verification already ran.
	existing, err := s.repo.Payment().GetByIntentID(ctx, intentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check payment: %w", err)
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, ErrPaymentMismatch
		}
		return existing, nil
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("gateway verification failed: %w", err)
	}
	if intent.Status != payment.IntentCompleted {
		return nil, ErrPaymentNotCompleted
	}
	if err := s.matchIntent(intent, course); err != nil {
		return nil, err
	}

	record := &models.Payment{
		UserID:   userID,
		CourseID: courseID,
		IntentID: intent.ID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		Status:   models.PaymentCompleted,
	}

	// Payment row and enrollment land together or not at all.
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := tx.Payment().Create(ctx, record); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		enrolled, err := tx.Enrollment().Exists(ctx, userID, courseID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if !enrolled {
			enrollment := &models.Enrollment{
				UserID:   userID,
				CourseID: courseID,
				Source:   models.EnrollmentPaid,
			}
			if err := tx.Enrollment().Create(ctx, enrollment); err != nil {
				return fmt.Errorf("failed to create enrollment: %w", err)
			}
		}

		return tx.Payment().MarkProcessed(ctx, record.ID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	event := events.NewPaymentCompletedEvent(record.ID, courseID, userID, intent.ID, intent.Amount, intent.Currency)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish payment event", "payment_id", record.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "Payment verified and enrollment created",
		"payment_id", record.ID,
		"course_id", courseID,
		"user_id", userID,
		"amount", intent.Amount,
		"currency", intent.Currency)
	return record, nil
}

func (s *paymentService) GetByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return s.repo.Payment().GetByUser(ctx, userID)
}

// matchIntent checks that the intent the client presented actually paid for
// this course: the checkout reference carries the course id, and amount and
// currency must match the listed price.
func (s *paymentService) matchIntent(intent *payment.Intent, course *models.Course) error {
	refCourseID, err := strconv.ParseUint(intent.Reference, 10, 64)
	if err != nil || uint(refCourseID) != course.ID {
		return ErrPaymentMismatch
	}
	if intent.Amount != course.PriceAmount || intent.Currency != course.Currency {
		return ErrPaymentMismatch
	}
	return nil
}
