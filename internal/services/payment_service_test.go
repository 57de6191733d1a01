package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/learnsphere/lms-service/internal/events"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/payment"
	"github.com/learnsphere/lms-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPaymentFixture(t *testing.T) (*MockRepository, *MockGateway, *events.MockEventPublisher, PaymentService) {
	t.Helper()
	repo := NewMockRepository()
	gateway := &MockGateway{}
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	svc := NewPaymentService(repo, gateway, utils.NewDevelopmentLogger(), publisher)
	return repo, gateway, publisher, svc
}

func TestPaymentService_VerifyAndEnroll(t *testing.T) {
	repo, gateway, publisher, svc := newPaymentFixture(t)
	ctx := context.Background()

	course := &models.Course{ID: 5, PriceAmount: 9900, Currency: "AED", CreatedBy: "owner-1"}
	repo.PaymentRepo.On("GetByIntentID", ctx, "pi_123").Return(nil, gorm.ErrRecordNotFound)
	repo.CourseRepo.On("GetByID", ctx, uint(5)).Return(course, nil)
	gateway.On("GetIntent", ctx, "pi_123").Return(&payment.Intent{
		ID:        "pi_123",
		Status:    payment.IntentCompleted,
		Amount:    9900,
		Currency:  "AED",
		Reference: "5",
	}, nil)
	repo.PaymentRepo.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)
	repo.EnrollmentRepo.On("Exists", ctx, "student-1", uint(5)).Return(false, nil)
	repo.EnrollmentRepo.On("Create", ctx, mock.AnythingOfType("*models.Enrollment")).Return(nil)
	repo.PaymentRepo.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(nil)

	record, err := svc.VerifyAndEnroll(ctx, "student-1", 5, "pi_123")
	require.NoError(t, err)

	assert.Equal(t, "pi_123", record.IntentID)
	assert.Equal(t, models.PaymentCompleted, record.Status)
	assert.Equal(t, 9900, record.Amount)

	repo.EnrollmentRepo.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(e *models.Enrollment) bool {
		return e.UserID == "student-1" && e.CourseID == 5 && e.Source == models.EnrollmentPaid
	}))

	published := publisher.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventPaymentCompleted, published[0].Type)
}

func TestPaymentService_VerifyAndEnroll_Idempotent(t *testing.T) {
	repo, gateway, publisher, svc := newPaymentFixture(t)
	ctx := context.Background()

	existing := &models.Payment{
		ID:       1,
		UserID:   "student-1",
		CourseID: 5,
		IntentID: "pi_123",
		Status:   models.PaymentCompleted,
	}
	repo.PaymentRepo.On("GetByIntentID", ctx, "pi_123").Return(existing, nil)

	record, err := svc.VerifyAndEnroll(ctx, "student-1", 5, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, existing, record)

	// Nothing re-runs on the second call: no gateway lookup, no enrollment,
	// no event.
	gateway.AssertNotCalled(t, "GetIntent", mock.Anything, mock.Anything)
	repo.EnrollmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.PublishedEvents())
}

func TestPaymentService_VerifyAndEnroll_WrongUserOnRecordedIntent(t *testing.T) {
	repo, _, _, svc := newPaymentFixture(t)
	ctx := context.Background()

	existing := &models.Payment{ID: 1, UserID: "student-1", CourseID: 5, IntentID: "pi_123"}
	repo.PaymentRepo.On("GetByIntentID", ctx, "pi_123").Return(existing, nil)

	_, err := svc.VerifyAndEnroll(ctx, "student-2", 5, "pi_123")
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestPaymentService_VerifyAndEnroll_IntentNotCompleted(t *testing.T) {
	repo, gateway, _, svc := newPaymentFixture(t)
	ctx := context.Background()

	repo.PaymentRepo.On("GetByIntentID", ctx, "pi_pending").Return(nil, gorm.ErrRecordNotFound)
	repo.CourseRepo.On("GetByID", ctx, uint(5)).Return(&models.Course{ID: 5, PriceAmount: 9900, Currency: "AED"}, nil)
	gateway.On("GetIntent", ctx, "pi_pending").Return(&payment.Intent{
		ID:     "pi_pending",
		Status: payment.IntentPending,
	}, nil)

	_, err := svc.VerifyAndEnroll(ctx, "student-1", 5, "pi_pending")
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	repo.PaymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_VerifyAndEnroll_MismatchedIntent(t *testing.T) {
	repo, gateway, _, svc := newPaymentFixture(t)
	ctx := context.Background()

	course := &models.Course{ID: 5, PriceAmount: 9900, Currency: "AED"}
	repo.PaymentRepo.On("GetByIntentID", ctx, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	repo.CourseRepo.On("GetByID", ctx, uint(5)).Return(course, nil)

	cases := []struct {
		name   string
		intent *payment.Intent
	}{
		{"wrong course reference", &payment.Intent{ID: "pi_a", Status: payment.IntentCompleted, Amount: 9900, Currency: "AED", Reference: "6"}},
		{"wrong amount", &payment.Intent{ID: "pi_b", Status: payment.IntentCompleted, Amount: 100, Currency: "AED", Reference: "5"}},
		{"wrong currency", &payment.Intent{ID: "pi_c", Status: payment.IntentCompleted, Amount: 9900, Currency: "USD", Reference: "5"}},
		{"non-numeric reference", &payment.Intent{ID: "pi_d", Status: payment.IntentCompleted, Amount: 9900, Currency: "AED", Reference: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway.On("GetIntent", ctx, tc.intent.ID).Return(tc.intent, nil)
			_, err := svc.VerifyAndEnroll(ctx, "student-1", 5, tc.intent.ID)
			assert.ErrorIs(t, err, ErrPaymentMismatch)
		})
	}
}

func TestPaymentService_VerifyAndEnroll_AlreadyEnrolled(t *testing.T) {
	repo, gateway, _, svc := newPaymentFixture(t)
	ctx := context.Background()

	course := &models.Course{ID: 5, PriceAmount: 9900, Currency: "AED"}
	repo.PaymentRepo.On("GetByIntentID", ctx, "pi_123").Return(nil, gorm.ErrRecordNotFound)
	repo.CourseRepo.On("GetByID", ctx, uint(5)).Return(course, nil)
	gateway.On("GetIntent", ctx, "pi_123").Return(&payment.Intent{
		ID: "pi_123", Status: payment.IntentCompleted, Amount: 9900, Currency: "AED", Reference: "5",
	}, nil)
	repo.PaymentRepo.On("Create", ctx, mock.Anything).Return(nil)
	repo.EnrollmentRepo.On("Exists", ctx, "student-1", uint(5)).Return(true, nil)
	repo.PaymentRepo.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(nil)

	// The payment is still recorded, but no duplicate enrollment appears.
	_, err := svc.VerifyAndEnroll(ctx, "student-1", 5, "pi_123")
	require.NoError(t, err)
	repo.EnrollmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
