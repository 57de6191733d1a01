package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CourseID    uint    `json:"course_id" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// PassingScore is a percentage in [0,100]. Zero disables grading: every
	// attempt counts as passing and the UI hides pass rates.
	PassingScore int `json:"passing_score" gorm:"not null;default:0" validate:"passing_score"`

	// Duration in minutes; zero means untimed.
	Duration int `json:"duration" gorm:"default:0" validate:"min=0,max=300"`

	MaxAttempts int `json:"max_attempts" gorm:"default:0" validate:"min=0,max=10"` // zero = unlimited

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
	Attempts  []QuizAttempt  `json:"attempts" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
	TotalPoints   int `json:"total_points" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// GradingDisabled reports whether the zero passing score convention applies.
func (q *Quiz) GradingDisabled() bool {
	return q.PassingScore == 0
}

type QuizQuestion struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	Text   string `json:"question_text" gorm:"type:text;not null" validate:"required,min=1"`

	// Options is a JSON array of option strings (at least 2).
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`
	CorrectOption int            `json:"correct_option" gorm:"not null" validate:"min=0"`
	Points        int            `json:"points" gorm:"default:1" validate:"min=1,max=100"`
	Position      int            `json:"position" gorm:"not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// OptionList decodes the stored options array. A decode failure yields an
// empty slice rather than an error; malformed rows degrade to "no options".
func (q *QuizQuestion) OptionList() []string {
	var options []string
	if len(q.Options) == 0 {
		return options
	}
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}
	return options
}

// SetOptions encodes the options array for storage.
func (q *QuizQuestion) SetOptions(options []string) error {
	raw, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = raw
	return nil
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

type QuizAttempt struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	UserID string `json:"user_id" gorm:"not null;index;size:255"`

	Status AttemptStatus `json:"status" gorm:"default:in_progress;index"`

	// Timing; both must be present for the attempt to contribute to time
	// statistics.
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Scoring
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`

	// Answers maps question id (JSON key, decimal string) to the selected
	// option index. Skipped questions have no entry.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz Quiz `json:"quiz" gorm:"foreignKey:QuizID"`
	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AnswerMap decodes the stored answers into question id -> option index.
// Malformed entries are skipped.
func (a *QuizAttempt) AnswerMap() map[uint]int {
	answers := make(map[uint]int)
	if len(a.Answers) == 0 {
		return answers
	}
	var raw map[string]int
	if err := json.Unmarshal(a.Answers, &raw); err != nil {
		return answers
	}
	for key, selected := range raw {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		answers[uint(id)] = selected
	}
	return answers
}

// SetAnswers encodes the answer map for storage.
func (a *QuizAttempt) SetAnswers(answers map[uint]int) error {
	raw := make(map[string]int, len(answers))
	for id, selected := range answers {
		raw[strconv.FormatUint(uint64(id), 10)] = selected
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	a.Answers = encoded
	return nil
}
