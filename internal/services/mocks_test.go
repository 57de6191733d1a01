package services

import (
	"context"
	"time"

	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/payment"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockRepository bundles the per-aggregate mocks behind the Repository
// interface. WithTx runs the callback against the same mocks.
type MockRepository struct {
	CourseRepo     *MockCourseRepository
	QuizRepo       *MockQuizRepository
	AttemptRepo    *MockAttemptRepository
	EnrollmentRepo *MockEnrollmentRepository
	PaymentRepo    *MockPaymentRepository
	UserRepo       *MockUserRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		CourseRepo:     &MockCourseRepository{},
		QuizRepo:       &MockQuizRepository{},
		AttemptRepo:    &MockAttemptRepository{},
		EnrollmentRepo: &MockEnrollmentRepository{},
		PaymentRepo:    &MockPaymentRepository{},
		UserRepo:       &MockUserRepository{},
	}
}

func (m *MockRepository) Course() repositories.CourseRepository         { return m.CourseRepo }
func (m *MockRepository) Quiz() repositories.QuizRepository             { return m.QuizRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository       { return m.AttemptRepo }
func (m *MockRepository) Enrollment() repositories.EnrollmentRepository { return m.EnrollmentRepo }
func (m *MockRepository) Payment() repositories.PaymentRepository       { return m.PaymentRepo }
func (m *MockRepository) User() repositories.UserRepository             { return m.UserRepo }

func (m *MockRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

// ===== COURSE =====

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Course), args.Get(1).(int64), args.Error(2)
}

func (m *MockCourseRepository) UpdateStatus(ctx context.Context, id uint, status models.CourseStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCourseRepository) CreateSection(ctx context.Context, section *models.CourseSection) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockCourseRepository) GetSection(ctx context.Context, id uint) (*models.CourseSection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseSection), args.Error(1)
}

func (m *MockCourseRepository) GetSections(ctx context.Context, courseID uint) ([]*models.CourseSection, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*models.CourseSection), args.Error(1)
}

func (m *MockCourseRepository) UpdateSection(ctx context.Context, section *models.CourseSection) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockCourseRepository) DeleteSection(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) ReorderSections(ctx context.Context, courseID uint, orders []repositories.SectionOrder) error {
	args := m.Called(ctx, courseID, orders)
	return args.Error(0)
}

func (m *MockCourseRepository) NextSectionPosition(ctx context.Context, courseID uint) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

// ===== QUIZ =====

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuestion(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizQuestion), args.Error(1)
}

func (m *MockQuizRepository) GetQuestions(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).([]*models.QuizQuestion), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteQuestion(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ===== ATTEMPT =====

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	args := m.Called(ctx, quizID, filters)
	return args.Get(0).([]*models.QuizAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActiveAttempt(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CountByUserAndQuiz(ctx context.Context, userID string, quizID uint) (int, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) GetCompletedByQuiz(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

// ===== ENROLLMENT =====

type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) Exists(ctx context.Context, userID string, courseID uint) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentRepository) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Enrollment), args.Get(1).(int64), args.Error(2)
}

func (m *MockEnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) CreateCertificate(ctx context.Context, certificate *models.Certificate) error {
	args := m.Called(ctx, certificate)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) GetCertificateByEnrollment(ctx context.Context, enrollmentID uint) (*models.Certificate, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Certificate), args.Error(1)
}

func (m *MockEnrollmentRepository) GetCertificateBySerial(ctx context.Context, serial string) (*models.Certificate, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Certificate), args.Error(1)
}

// ===== PAYMENT =====

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkProcessed(ctx context.Context, id uint, processedAt time.Time) error {
	args := m.Called(ctx, id, processedAt)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

// ===== USER =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// ===== PAYMENT GATEWAY =====

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}
