package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/learnsphere/lms-service/internal/cache"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyticsFixture(t *testing.T) (*MockRepository, AnalyticsService) {
	t.Helper()
	repo := NewMockRepository()
	svc := NewAnalyticsService(repo, utils.NewDevelopmentLogger(), cache.NoopCache{}, time.Minute)
	return repo, svc
}

func completedAttempt(userID string, score, maxScore float64, answers map[uint]int, minutes int) *models.QuizAttempt {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	completed := started.Add(time.Duration(minutes) * time.Minute)
	a := &models.QuizAttempt{
		UserID:      userID,
		Status:      models.AttemptCompleted,
		StartedAt:   &started,
		CompletedAt: &completed,
		Score:       score,
		MaxScore:    maxScore,
	}
	if err := a.SetAnswers(answers); err != nil {
		panic(err)
	}
	return a
}

func optionQuestion(id uint, correct int, options ...string) *models.QuizQuestion {
	q := &models.QuizQuestion{
		ID:            id,
		Text:          "question",
		CorrectOption: correct,
		Points:        1,
	}
	if err := q.SetOptions(options); err != nil {
		panic(err)
	}
	return q
}

func TestAnalyticsService_GetQuizReport(t *testing.T) {
	repo, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	quiz := &models.Quiz{ID: 7, CourseID: 3, Title: "Midterm", PassingScore: 60, CreatedBy: "owner-1"}
	course := &models.Course{ID: 3, CreatedBy: "owner-1"}

	repo.QuizRepo.On("GetByID", ctx, uint(7)).Return(quiz, nil)
	repo.CourseRepo.On("GetByID", ctx, uint(3)).Return(course, nil)
	repo.AttemptRepo.On("GetCompletedByQuiz", ctx, uint(7)).Return([]*models.QuizAttempt{
		completedAttempt("alice", 2, 2, map[uint]int{1: 0}, 10),
		completedAttempt("bob", 1, 2, map[uint]int{1: 1}, 20),
	}, nil)
	repo.QuizRepo.On("GetQuestions", ctx, uint(7)).Return([]*models.QuizQuestion{
		optionQuestion(1, 0, "yes", "no"),
	}, nil)

	report, err := svc.GetQuizReport(ctx, 7, "owner-1", models.RoleCourseAdmin)
	require.NoError(t, err)

	assert.Equal(t, uint(7), report.QuizID)
	assert.Equal(t, "Midterm", report.QuizTitle)
	assert.False(t, report.GradingDisabled)

	assert.Equal(t, 2, report.Quiz.TotalAttempts)
	assert.Equal(t, 2, report.Quiz.UniqueUsers)
	assert.InDelta(t, 75.0, report.Quiz.AverageScore, 0.001)
	assert.InDelta(t, 50.0, report.Quiz.PassRate, 0.001)
	assert.InDelta(t, 15.0, report.Quiz.AverageTimeMinutes, 0.001)

	require.Len(t, report.Questions, 1)
	q := report.Questions[0]
	assert.Equal(t, 2, q.TotalAnswered)
	assert.Equal(t, 1, q.CorrectCount)
	assert.InDelta(t, 50.0, q.SuccessRate, 0.001)
	require.Len(t, q.OptionDistribution, 2)
	assert.Equal(t, 1, q.OptionDistribution[0].Count)
	assert.Equal(t, 1, q.OptionDistribution[1].Count)
}

func TestAnalyticsService_GetQuizReport_GradingDisabled(t *testing.T) {
	repo, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	quiz := &models.Quiz{ID: 9, CourseID: 3, Title: "Survey", PassingScore: 0, CreatedBy: "owner-1"}
	repo.QuizRepo.On("GetByID", ctx, uint(9)).Return(quiz, nil)
	repo.CourseRepo.On("GetByID", ctx, uint(3)).Return(&models.Course{ID: 3, CreatedBy: "owner-1"}, nil)
	repo.AttemptRepo.On("GetCompletedByQuiz", ctx, uint(9)).Return([]*models.QuizAttempt{
		completedAttempt("alice", 0, 2, map[uint]int{}, 5),
	}, nil)
	repo.QuizRepo.On("GetQuestions", ctx, uint(9)).Return([]*models.QuizQuestion{}, nil)

	report, err := svc.GetQuizReport(ctx, 9, "owner-1", models.RoleCourseAdmin)
	require.NoError(t, err)

	assert.True(t, report.GradingDisabled)
	// A zero threshold passes everything; display suppression is the
	// caller's job, signalled by the flag.
	assert.InDelta(t, 100.0, report.Quiz.PassRate, 0.001)
}

func TestAnalyticsService_GetQuizReport_PermissionDenied(t *testing.T) {
	repo, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	quiz := &models.Quiz{ID: 7, CourseID: 3, CreatedBy: "owner-1"}
	repo.QuizRepo.On("GetByID", ctx, uint(7)).Return(quiz, nil)
	repo.CourseRepo.On("GetByID", ctx, uint(3)).Return(&models.Course{ID: 3, CreatedBy: "owner-1"}, nil)

	_, err := svc.GetQuizReport(ctx, 7, "student-1", models.RoleUser)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	// Another course admin does not own this course either.
	_, err = svc.GetQuizReport(ctx, 7, "other-admin", models.RoleCourseAdmin)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestAnalyticsService_GetQuizReport_EmptyQuiz(t *testing.T) {
	repo, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	quiz := &models.Quiz{ID: 11, CourseID: 3, Title: "Unused", PassingScore: 50, CreatedBy: "owner-1"}
	repo.QuizRepo.On("GetByID", ctx, uint(11)).Return(quiz, nil)
	repo.CourseRepo.On("GetByID", ctx, uint(3)).Return(&models.Course{ID: 3, CreatedBy: "owner-1"}, nil)
	repo.AttemptRepo.On("GetCompletedByQuiz", ctx, uint(11)).Return([]*models.QuizAttempt{}, nil)
	repo.QuizRepo.On("GetQuestions", ctx, uint(11)).Return([]*models.QuizQuestion{}, nil)

	report, err := svc.GetQuizReport(ctx, 11, "owner-1", models.RoleCourseAdmin)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Quiz.TotalAttempts)
	assert.Zero(t, report.Quiz.AverageScore)
	assert.Zero(t, report.Quiz.PassRate)
	assert.Empty(t, report.Questions)
}

func TestAnalyticsService_ExportCSV(t *testing.T) {
	repo, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	quiz := &models.Quiz{ID: 7, CourseID: 3, Title: "Midterm", PassingScore: 60, CreatedBy: "owner-1"}
	repo.QuizRepo.On("GetByID", ctx, uint(7)).Return(quiz, nil)
	repo.CourseRepo.On("GetByID", ctx, uint(3)).Return(&models.Course{ID: 3, CreatedBy: "owner-1"}, nil)
	repo.AttemptRepo.On("GetCompletedByQuiz", ctx, uint(7)).Return([]*models.QuizAttempt{
		completedAttempt("alice", 2, 2, map[uint]int{1: 0}, 10),
	}, nil)
	repo.QuizRepo.On("GetQuestions", ctx, uint(7)).Return([]*models.QuizQuestion{
		optionQuestion(1, 0, "yes", "no"),
	}, nil)

	raw, err := svc.ExportQuizReportCSV(ctx, 7, "owner-1", models.RoleCourseAdmin)
	require.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(raw)))
	// Summary rows and question rows have different widths.
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])

	var questionHeader []string
	for _, row := range rows {
		if len(row) == 4 {
			questionHeader = row
			break
		}
	}
	assert.Equal(t, []string{"Question", "Answered", "Correct", "Success Rate %"}, questionHeader)

	flat := string(raw)
	assert.Contains(t, flat, "Midterm")
	assert.Contains(t, flat, "Pass Rate %")
	assert.Contains(t, flat, "question,1,1,100.00")
}

func TestAnalyticsService_ExportXLSX(t *testing.T) {
	repo, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	quiz := &models.Quiz{ID: 7, CourseID: 3, Title: "Midterm", PassingScore: 60, CreatedBy: "owner-1"}
	repo.QuizRepo.On("GetByID", ctx, uint(7)).Return(quiz, nil)
	repo.CourseRepo.On("GetByID", ctx, uint(3)).Return(&models.Course{ID: 3, CreatedBy: "owner-1"}, nil)
	repo.AttemptRepo.On("GetCompletedByQuiz", ctx, uint(7)).Return([]*models.QuizAttempt{
		completedAttempt("alice", 2, 2, map[uint]int{1: 0}, 10),
	}, nil)
	repo.QuizRepo.On("GetQuestions", ctx, uint(7)).Return([]*models.QuizQuestion{
		optionQuestion(1, 0, "yes", "no"),
	}, nil)

	raw, err := svc.ExportQuizReportXLSX(ctx, 7, "owner-1", models.RoleCourseAdmin)
	require.NoError(t, err)
	// XLSX is a zip archive; check the magic bytes rather than parsing.
	require.Greater(t, len(raw), 4)
	assert.Equal(t, []byte{'P', 'K'}, raw[:2])
}
