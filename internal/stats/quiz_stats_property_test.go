package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func genAttempts(t *rapid.T, questionIDs []uint) []Attempt {
	return rapid.SliceOfN(rapid.Custom(func(t *rapid.T) Attempt {
		a := Attempt{
			UserID:   rapid.SampledFrom([]string{"u1", "u2", "u3", "u4"}).Draw(t, "user"),
			MaxScore: float64(rapid.IntRange(0, 100).Draw(t, "max_score")),
		}
		if a.MaxScore > 0 {
			a.Score = float64(rapid.IntRange(0, int(a.MaxScore)).Draw(t, "score"))
		}
		if rapid.Bool().Draw(t, "timed") {
			start := time.Unix(int64(rapid.IntRange(0, 1<<20).Draw(t, "start")), 0)
			end := start.Add(time.Duration(rapid.IntRange(0, 7200).Draw(t, "elapsed")) * time.Second)
			a.StartedAt, a.CompletedAt = &start, &end
		}
		a.Answers = make(map[uint]int)
		for _, id := range questionIDs {
			if rapid.Bool().Draw(t, "answered") {
				a.Answers[id] = rapid.IntRange(0, 4).Draw(t, "selected")
			}
		}
		return a
	}), 0, 20).Draw(t, "attempts")
}

// Compute is a pure function: identical inputs must give identical outputs,
// and the aggregate invariants must hold for any input shape.
func TestCompute_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		questions := []Question{
			{ID: 1, Text: "q1", Options: []string{"a", "b", "c"}, CorrectOption: 0},
			{ID: 2, Text: "q2", Options: []string{"a", "b"}, CorrectOption: 1},
		}
		attempts := genAttempts(rt, []uint{1, 2})
		threshold := float64(rapid.IntRange(0, 100).Draw(rt, "threshold"))

		first, firstQ := Compute(attempts, questions, threshold)
		second, secondQ := Compute(attempts, questions, threshold)
		// Assertions bind to rt so rapid can shrink a failing input.
		assert.Equal(rt, first, second)
		assert.Equal(rt, firstQ, secondQ)

		assert.Equal(rt, len(attempts), first.TotalAttempts)
		assert.LessOrEqual(rt, first.UniqueUsers, first.TotalAttempts)
		assert.GreaterOrEqual(rt, first.PassRate, 0.0)
		assert.LessOrEqual(rt, first.PassRate, 100.0)
		assert.GreaterOrEqual(rt, first.UserPassRate, 0.0)
		assert.LessOrEqual(rt, first.UserPassRate, 100.0)
		assert.LessOrEqual(rt, first.WorstScore, first.BestScore)
		assert.GreaterOrEqual(rt, first.AverageScore, first.WorstScore-1e-9)
		assert.LessOrEqual(rt, first.AverageScore, first.BestScore+1e-9)

		for _, qs := range firstQ {
			assert.LessOrEqual(rt, qs.CorrectCount, qs.TotalAnswered)
			assert.LessOrEqual(rt, qs.TotalAnswered, len(attempts))
			bucketed := 0
			for _, opt := range qs.OptionDistribution {
				bucketed += opt.Count
			}
			assert.LessOrEqual(rt, bucketed, qs.TotalAnswered)
		}
	})
}
