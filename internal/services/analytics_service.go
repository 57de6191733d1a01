package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/learnsphere/lms-service/internal/cache"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/stats"
	"github.com/learnsphere/lms-service/internal/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// QuizReport is the full analytics payload for one quiz: the quiz-level
// summary plus the per-question breakdown.
type QuizReport struct {
	QuizID    uint      `json:"quiz_id"`
	QuizTitle string    `json:"quiz_title"`
	Generated time.Time `json:"generated_at"`

	// GradingDisabled signals the zero passing score convention. Pass rates
	// are still computed (trivially 100%) but must not be displayed.
	GradingDisabled bool `json:"grading_disabled"`

	Quiz      stats.QuizStats       `json:"quiz_stats"`
	Questions []stats.QuestionStats `json:"question_stats"`
}

// AnalyticsService builds and exports quiz statistics reports. Reports are
// cached; attempt submission invalidates them.
type AnalyticsService interface {
	GetQuizReport(ctx context.Context, quizID uint, userID string, role models.UserRole) (*QuizReport, error)
	ExportQuizReportCSV(ctx context.Context, quizID uint, userID string, role models.UserRole) ([]byte, error)
	ExportQuizReportXLSX(ctx context.Context, quizID uint, userID string, role models.UserRole) ([]byte, error)
}

type analyticsService struct {
	repo     repositories.Repository
	logger   utils.Logger
	cache    cache.CacheService
	cacheTTL time.Duration
}

func NewAnalyticsService(repo repositories.Repository, logger utils.Logger, c cache.CacheService, cacheTTL time.Duration) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		logger:   logger,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func quizStatsCacheKey(quizID uint) string {
	return fmt.Sprintf("lms:quiz_stats:%d", quizID)
}

func (s *analyticsService) GetQuizReport(ctx context.Context, quizID uint, userID string, role models.UserRole) (*QuizReport, error) {
	quiz, err := s.requireReportAccess(ctx, quizID, userID, role)
	if err != nil {
		return nil, err
	}

	var cached QuizReport
	if err := s.cache.Get(ctx, quizStatsCacheKey(quizID), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "Stats cache read failed", "quiz_id", quizID, "error", err)
	}

	report, err := s.buildReport(ctx, quiz)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, quizStatsCacheKey(quizID), report, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Stats cache write failed", "quiz_id", quizID, "error", err)
	}
	return report, nil
}

// buildReport loads completed attempts and questions, maps them onto the
// aggregation inputs and runs the computation.
func (s *analyticsService) buildReport(ctx context.Context, quiz *models.Quiz) (*QuizReport, error) {
	attempts, err := s.repo.Attempt().GetCompletedByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	questions, err := s.repo.Quiz().GetQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	statAttempts := make([]stats.Attempt, len(attempts))
	for i, a := range attempts {
		statAttempts[i] = stats.Attempt{
			UserID:      a.UserID,
			Score:       a.Score,
			MaxScore:    a.MaxScore,
			StartedAt:   a.StartedAt,
			CompletedAt: a.CompletedAt,
			Answers:     a.AnswerMap(),
		}
	}

	statQuestions := make([]stats.Question, len(questions))
	for i, q := range questions {
		statQuestions[i] = stats.Question{
			ID:            q.ID,
			Text:          q.Text,
			Options:       q.OptionList(),
			CorrectOption: q.CorrectOption,
			Points:        q.Points,
		}
	}

	quizStats, questionStats := stats.Compute(statAttempts, statQuestions, float64(quiz.PassingScore))

	s.logger.InfoContext(ctx, "Quiz report built",
		"quiz_id", quiz.ID,
		"attempts", quizStats.TotalAttempts,
		"questions", len(questionStats))

	return &QuizReport{
		QuizID:          quiz.ID,
		QuizTitle:       quiz.Title,
		Generated:       time.Now(),
		GradingDisabled: quiz.GradingDisabled(),
		Quiz:            quizStats,
		Questions:       questionStats,
	}, nil
}

// ===== EXPORT =====

func (s *analyticsService) ExportQuizReportCSV(ctx context.Context, quizID uint, userID string, role models.UserRole) ([]byte, error) {
	report, err := s.GetQuizReport(ctx, quizID, userID, role)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Metric", "Value"},
		{"Quiz", report.QuizTitle},
		{"Total Attempts", strconv.Itoa(report.Quiz.TotalAttempts)},
		{"Unique Users", strconv.Itoa(report.Quiz.UniqueUsers)},
		{"Average Score %", formatPercent(report.Quiz.AverageScore)},
		{"Best Score %", formatPercent(report.Quiz.BestScore)},
		{"Worst Score %", formatPercent(report.Quiz.WorstScore)},
		{"Average Time (min)", formatPercent(report.Quiz.AverageTimeMinutes)},
	}
	if !report.GradingDisabled {
		rows = append(rows,
			[]string{"Pass Rate %", formatPercent(report.Quiz.PassRate)},
			[]string{"User Pass Rate %", formatPercent(report.Quiz.UserPassRate)},
		)
	}
	rows = append(rows, []string{}, []string{"Question", "Answered", "Correct", "Success Rate %"})
	for _, q := range report.Questions {
		rows = append(rows, []string{
			q.QuestionText,
			strconv.Itoa(q.TotalAnswered),
			strconv.Itoa(q.CorrectCount),
			formatPercent(q.SuccessRate),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *analyticsService) ExportQuizReportXLSX(ctx context.Context, quizID uint, userID string, role models.UserRole) ([]byte, error) {
	report, err := s.GetQuizReport(ctx, quizID, userID, role)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName(f.GetSheetName(0), summary)

	summaryRows := [][]interface{}{
		{"Quiz", report.QuizTitle},
		{"Generated", report.Generated.Format(time.RFC3339)},
		{"Total Attempts", report.Quiz.TotalAttempts},
		{"Unique Users", report.Quiz.UniqueUsers},
		{"Average Score %", report.Quiz.AverageScore},
		{"Best Score %", report.Quiz.BestScore},
		{"Worst Score %", report.Quiz.WorstScore},
		{"Average Time (min)", report.Quiz.AverageTimeMinutes},
	}
	if !report.GradingDisabled {
		summaryRows = append(summaryRows,
			[]interface{}{"Pass Rate %", report.Quiz.PassRate},
			[]interface{}{"User Pass Rate %", report.Quiz.UserPassRate},
		)
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	const questionsSheet = "Questions"
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	header := []interface{}{"Question", "Answered", "Correct", "Success Rate %", "Option", "Picked", "Picked %"}
	if err := f.SetSheetRow(questionsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	rowIdx := 2
	for _, q := range report.Questions {
		row := []interface{}{q.QuestionText, q.TotalAnswered, q.CorrectCount, q.SuccessRate}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		if err := f.SetSheetRow(questionsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write question row: %w", err)
		}
		rowIdx++
		for _, opt := range q.OptionDistribution {
			optRow := []interface{}{"", "", "", "", opt.OptionText, opt.Count, opt.Percentage}
			cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
			if err := f.SetSheetRow(questionsSheet, cell, &optRow); err != nil {
				return nil, fmt.Errorf("failed to write option row: %w", err)
			}
			rowIdx++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// requireReportAccess loads the quiz and checks that the caller owns the
// course (or is a superadmin). Students never see aggregate reports.
func (s *analyticsService) requireReportAccess(ctx context.Context, quizID uint, userID string, role models.UserRole) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if role == models.RoleSuperAdmin {
		return quiz, nil
	}
	course, err := s.repo.Course().GetByID(ctx, quiz.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !role.CanManageCourses() || course.CreatedBy != userID {
		return nil, NewPermissionError(userID, quizID, "quiz", "view_report", "not owner or insufficient role")
	}
	return quiz, nil
}
