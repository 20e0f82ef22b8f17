// entity.go

package question

import (
	"encoding/json"
	"time"
)

// Question is an exam item. Options is a JSON array of {key, text} pairs;
// Answer holds the correct option keys, concatenated and sorted for
// multiple-choice items ("ABD").
type Question struct {
	ID         string          `db:"id"`
	Content    string          `db:"content"`
	Type       int             `db:"type"`
	Options    json.RawMessage `db:"options"`
	Answer     string          `db:"answer"`
	Analysis   *string         `db:"analysis"`
	Category   *string         `db:"category"`
	Difficulty int             `db:"difficulty"`
	Status     int             `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

const (
	TypeSingleChoice   = 1
	TypeMultipleChoice = 2
	TypeTrueFalse      = 3
)

const (
	StatusEnabled  = 1
	StatusDisabled = 0
)

// PracticeRecord is one submitted answer. Correctness is judged server-side
// at submission time and never trusted from the client.
type PracticeRecord struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	QuestionID string    `db:"question_id"`
	UserAnswer string    `db:"user_answer"`
	IsCorrect  bool      `db:"is_correct"`
	TimeSpent  int       `db:"time_spent"`
	Mode       string    `db:"mode"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	ModePractice = "practice"
	ModeExam     = "exam"
	ModeReview   = "review"
)
