// Package stats computes quiz-level and per-question statistics from
// completed attempt records. It is a pure computation layer: no storage, no
// I/O, and no state between calls. Callers fetch attempts and questions,
// hand them in, and render or export the result.
package stats

import "time"

// Attempt is one completed quiz run by a user. A user may appear in any
// number of attempts.
type Attempt struct {
	UserID      string
	Score       float64
	MaxScore    float64
	StartedAt   *time.Time
	CompletedAt *time.Time

	// Answers maps question id to the selected option index. Questions the
	// user skipped have no entry.
	Answers map[uint]int
}

// Question describes one quiz question as it was presented.
type Question struct {
	ID            uint
	Text          string
	Options       []string
	CorrectOption int
	Points        int
}

// QuizStats is the quiz-level summary over all attempts.
type QuizStats struct {
	TotalAttempts int `json:"total_attempts"`
	UniqueUsers   int `json:"unique_users"`

	// Score fields are percentages in [0,100].
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
	WorstScore   float64 `json:"worst_score"`

	// PassRate is per attempt; UserPassRate counts each user once by their
	// best attempt. With a passing threshold of zero both are trivially 100
	// for non-empty input and the caller must not display them.
	PassRate     float64 `json:"pass_rate"`
	UserPassRate float64 `json:"user_pass_rate"`

	// AverageTimeMinutes averages only attempts that carry both timestamps.
	AverageTimeMinutes float64 `json:"average_time_minutes"`
}

// OptionStat is the share of answers that picked one option.
type OptionStat struct {
	OptionIndex int     `json:"option_index"`
	OptionText  string  `json:"option_text"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// QuestionStats is the answer breakdown for a single question.
type QuestionStats struct {
	QuestionID         uint         `json:"question_id"`
	QuestionText       string       `json:"question_text"`
	CorrectCount       int          `json:"correct_count"`
	TotalAnswered      int          `json:"total_answered"`
	SuccessRate        float64      `json:"success_rate"`
	OptionDistribution []OptionStat `json:"option_distribution"`
}

// Compute aggregates attempts against questions under the given passing
// threshold (a percentage in [0,100]).
//
// Compute is total: empty or degenerate inputs produce zeroed results, never
// a panic or an error. Attempts with a zero max score count as 0%. A
// threshold of zero makes every attempt pass; that overload of the threshold
// as a "grading disabled" flag is inherited behavior and the caller is
// responsible for suppressing pass rates in that case.
func Compute(attempts []Attempt, questions []Question, passingThreshold float64) (QuizStats, []QuestionStats) {
	quiz := computeQuizStats(attempts, passingThreshold)
	perQuestion := computeQuestionStats(attempts, questions)
	return quiz, perQuestion
}

func computeQuizStats(attempts []Attempt, passingThreshold float64) QuizStats {
	s := QuizStats{TotalAttempts: len(attempts)}
	if len(attempts) == 0 {
		return s
	}

	var (
		scoreSum   float64
		passed     int
		timeSum    float64
		timedCount int
		bestByUser = make(map[string]float64)
	)

	for i, a := range attempts {
		pct := percentage(a)
		scoreSum += pct

		if pct >= passingThreshold {
			passed++
		}

		if i == 0 {
			s.BestScore, s.WorstScore = pct, pct
		} else {
			if pct > s.BestScore {
				s.BestScore = pct
			}
			if pct < s.WorstScore {
				s.WorstScore = pct
			}
		}

		if best, seen := bestByUser[a.UserID]; !seen || pct > best {
			bestByUser[a.UserID] = pct
		}

		if a.StartedAt != nil && a.CompletedAt != nil {
			timeSum += a.CompletedAt.Sub(*a.StartedAt).Minutes()
			timedCount++
		}
	}

	s.UniqueUsers = len(bestByUser)
	s.AverageScore = scoreSum / float64(len(attempts))
	s.PassRate = float64(passed) / float64(len(attempts)) * 100

	usersPassed := 0
	for _, best := range bestByUser {
		if best >= passingThreshold {
			usersPassed++
		}
	}
	s.UserPassRate = float64(usersPassed) / float64(len(bestByUser)) * 100

	if timedCount > 0 {
		s.AverageTimeMinutes = timeSum / float64(timedCount)
	}

	return s
}

func computeQuestionStats(attempts []Attempt, questions []Question) []QuestionStats {
	// One pass over the recorded answers, then a tally per question.
	answersByQuestion := make(map[uint][]int)
	for _, a := range attempts {
		for questionID, selected := range a.Answers {
			answersByQuestion[questionID] = append(answersByQuestion[questionID], selected)
		}
	}

	result := make([]QuestionStats, 0, len(questions))
	for _, q := range questions {
		qs := QuestionStats{
			QuestionID:   q.ID,
			QuestionText: q.Text,
		}

		counts := make([]int, len(q.Options))
		correctInRange := q.CorrectOption >= 0 && q.CorrectOption < len(counts)
		for _, selected := range answersByQuestion[q.ID] {
			qs.TotalAnswered++
			// Out-of-range indices still count as answered but land in no
			// bucket; a bad correct_option yields a zero success rate.
			if selected >= 0 && selected < len(counts) {
				counts[selected]++
			}
			if correctInRange && selected == q.CorrectOption {
				qs.CorrectCount++
			}
		}

		if qs.TotalAnswered > 0 {
			qs.SuccessRate = float64(qs.CorrectCount) / float64(qs.TotalAnswered) * 100
		}

		qs.OptionDistribution = make([]OptionStat, len(q.Options))
		for i, count := range counts {
			stat := OptionStat{
				OptionIndex: i,
				OptionText:  q.Options[i],
				Count:       count,
			}
			if qs.TotalAnswered > 0 {
				stat.Percentage = float64(count) / float64(qs.TotalAnswered) * 100
			}
			qs.OptionDistribution[i] = stat
		}

		result = append(result, qs)
	}

	return result
}

// percentage normalizes an attempt score to [0,100]. A zero max score is
// defined as 0% to keep the aggregation total.
func percentage(a Attempt) float64 {
	if a.MaxScore == 0 {
		return 0
	}
	return a.Score / a.MaxScore * 100
}
