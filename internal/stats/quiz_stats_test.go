package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func attempt(userID string, score, maxScore float64) Attempt {
	return Attempt{UserID: userID, Score: score, MaxScore: maxScore}
}

func TestCompute_EmptyInput(t *testing.T) {
	quiz, questions := Compute(nil, nil, 70)

	assert.Equal(t, 0, quiz.TotalAttempts)
	assert.Equal(t, 0, quiz.UniqueUsers)
	assert.Zero(t, quiz.AverageScore)
	assert.Zero(t, quiz.PassRate)
	assert.Zero(t, quiz.UserPassRate)
	assert.Zero(t, quiz.AverageTimeMinutes)
	assert.Zero(t, quiz.BestScore)
	assert.Zero(t, quiz.WorstScore)
	assert.Empty(t, questions)
}

func TestCompute_SinglePassingAttempt(t *testing.T) {
	quiz, _ := Compute([]Attempt{attempt("u1", 80, 100)}, nil, 70)

	assert.Equal(t, 1, quiz.TotalAttempts)
	assert.Equal(t, 1, quiz.UniqueUsers)
	assert.InDelta(t, 80, quiz.AverageScore, 1e-9)
	assert.InDelta(t, 100, quiz.PassRate, 1e-9)
	assert.InDelta(t, 80, quiz.BestScore, 1e-9)
	assert.InDelta(t, 80, quiz.WorstScore, 1e-9)
}

func TestCompute_UserBestCountsOnce(t *testing.T) {
	attempts := []Attempt{
		attempt("a", 40, 100),
		attempt("a", 90, 100),
		attempt("b", 60, 100),
	}

	quiz, _ := Compute(attempts, nil, 70)

	assert.Equal(t, 3, quiz.TotalAttempts)
	assert.Equal(t, 2, quiz.UniqueUsers)
	// Only the 90% attempt passes.
	assert.InDelta(t, 100.0/3, quiz.PassRate, 1e-9)
	// A's best passes, B's does not.
	assert.InDelta(t, 50, quiz.UserPassRate, 1e-9)
	assert.InDelta(t, 90, quiz.BestScore, 1e-9)
	assert.InDelta(t, 40, quiz.WorstScore, 1e-9)
}

func TestCompute_TimeAveragingSkipsIncompleteRecords(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	attempts := []Attempt{
		{UserID: "a", Score: 50, MaxScore: 100, StartedAt: timePtr(base), CompletedAt: timePtr(base.Add(10 * time.Minute))},
		{UserID: "b", Score: 50, MaxScore: 100, StartedAt: timePtr(base), CompletedAt: timePtr(base.Add(20 * time.Minute))},
		{UserID: "c", Score: 50, MaxScore: 100, StartedAt: timePtr(base)}, // never completed
	}

	quiz, _ := Compute(attempts, nil, 70)

	assert.InDelta(t, 15, quiz.AverageTimeMinutes, 1e-9)
	// The incomplete record still counts everywhere else.
	assert.Equal(t, 3, quiz.TotalAttempts)
	assert.Equal(t, 3, quiz.UniqueUsers)
}

func TestCompute_OptionDistribution(t *testing.T) {
	question := Question{
		ID:            7,
		Text:          "Pick one",
		Options:       []string{"A", "B", "C"},
		CorrectOption: 1,
	}
	attempts := []Attempt{
		{UserID: "a", Score: 1, MaxScore: 1, Answers: map[uint]int{7: 1}},
		{UserID: "b", Score: 1, MaxScore: 1, Answers: map[uint]int{7: 1}},
		{UserID: "c", Score: 0, MaxScore: 1, Answers: map[uint]int{7: 2}},
	}

	_, questions := Compute(attempts, []Question{question}, 70)
	require.Len(t, questions, 1)

	qs := questions[0]
	assert.Equal(t, uint(7), qs.QuestionID)
	assert.Equal(t, 3, qs.TotalAnswered)
	assert.Equal(t, 2, qs.CorrectCount)
	assert.InDelta(t, 200.0/3, qs.SuccessRate, 1e-9)

	require.Len(t, qs.OptionDistribution, 3)
	assert.Equal(t, 0, qs.OptionDistribution[0].Count)
	assert.Zero(t, qs.OptionDistribution[0].Percentage)
	assert.Equal(t, 2, qs.OptionDistribution[1].Count)
	assert.InDelta(t, 200.0/3, qs.OptionDistribution[1].Percentage, 1e-9)
	assert.Equal(t, 1, qs.OptionDistribution[2].Count)
	assert.InDelta(t, 100.0/3, qs.OptionDistribution[2].Percentage, 1e-9)
	assert.Equal(t, "B", qs.OptionDistribution[1].OptionText)
}

func TestCompute_SkippedAnswersAreNotPenalized(t *testing.T) {
	question := Question{ID: 3, Options: []string{"yes", "no"}, CorrectOption: 0}
	attempts := []Attempt{
		{UserID: "a", MaxScore: 1, Answers: map[uint]int{3: 0}},
		{UserID: "b", MaxScore: 1, Answers: map[uint]int{3: 1}},
		{UserID: "c", MaxScore: 1},
		{UserID: "d", MaxScore: 1},
		{UserID: "e", MaxScore: 1, Answers: map[uint]int{99: 0}}, // unrelated question
	}

	_, questions := Compute(attempts, []Question{question}, 70)
	require.Len(t, questions, 1)

	assert.Equal(t, 2, questions[0].TotalAnswered)
	assert.Equal(t, 1, questions[0].CorrectCount)
	assert.InDelta(t, 50, questions[0].SuccessRate, 1e-9)
}

func TestCompute_ZeroMaxScoreIsZeroPercent(t *testing.T) {
	quiz, _ := Compute([]Attempt{attempt("a", 5, 0)}, nil, 70)

	assert.Zero(t, quiz.AverageScore)
	assert.Zero(t, quiz.BestScore)
	assert.Zero(t, quiz.PassRate)
}

func TestCompute_ZeroThresholdPassesEverything(t *testing.T) {
	attempts := []Attempt{
		attempt("a", 0, 100),
		attempt("b", 10, 100),
	}

	quiz, _ := Compute(attempts, nil, 0)

	// The zero threshold doubles as the grading-disabled flag; arithmetic
	// still runs and everything passes. Display suppression is the caller's.
	assert.InDelta(t, 100, quiz.PassRate, 1e-9)
	assert.InDelta(t, 100, quiz.UserPassRate, 1e-9)
}

func TestCompute_MalformedQuestionDegrades(t *testing.T) {
	question := Question{ID: 1, Options: []string{"A", "B"}, CorrectOption: 9}
	attempts := []Attempt{
		{UserID: "a", MaxScore: 1, Answers: map[uint]int{1: 0}},
		{UserID: "b", MaxScore: 1, Answers: map[uint]int{1: 9}}, // out of range too
	}

	_, questions := Compute(attempts, []Question{question}, 70)
	require.Len(t, questions, 1)

	qs := questions[0]
	assert.Equal(t, 2, qs.TotalAnswered)
	assert.Equal(t, 0, qs.CorrectCount)
	assert.Zero(t, qs.SuccessRate)
	assert.Equal(t, 1, qs.OptionDistribution[0].Count)
	assert.Equal(t, 0, qs.OptionDistribution[1].Count)
}

func TestCompute_QuestionOrderFollowsInput(t *testing.T) {
	questions := []Question{
		{ID: 30, Options: []string{"a", "b"}},
		{ID: 10, Options: []string{"a", "b"}},
		{ID: 20, Options: []string{"a", "b"}},
	}

	_, result := Compute(nil, questions, 70)
	require.Len(t, result, 3)
	assert.Equal(t, uint(30), result[0].QuestionID)
	assert.Equal(t, uint(10), result[1].QuestionID)
	assert.Equal(t, uint(20), result[2].QuestionID)
}
