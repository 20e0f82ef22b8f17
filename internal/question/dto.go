// dto.go

package question

import (
	"encoding/json"
	"time"
)

type ListQuestionsParams struct {
	Page       int
	PageSize   int
	Search     string
	Category   string
	Difficulty *int
	// EnabledOnly restricts the listing to enabled questions. Practice
	// surfaces set it; admin screens see everything.
	EnabledOnly bool
}

func (p *ListQuestionsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

type CreateQuestionRequest struct {
	Content    string          `json:"content"    validate:"required,min=1"`
	Type       int             `json:"type"       validate:"required,oneof=1 2 3"`
	Options    json.RawMessage `json:"options"    validate:"required"`
	Answer     string          `json:"answer"     validate:"required,min=1,max=10"`
	Analysis   *string         `json:"analysis"`
	Category   *string         `json:"category"   validate:"omitempty,max=50"`
	Difficulty *int            `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Status     *int            `json:"status"     validate:"omitempty,oneof=0 1"`
}

type UpdateQuestionRequest struct {
	Content    string          `json:"content"    validate:"required,min=1"`
	Type       int             `json:"type"       validate:"required,oneof=1 2 3"`
	Options    json.RawMessage `json:"options"    validate:"required"`
	Answer     string          `json:"answer"     validate:"required,min=1,max=10"`
	Analysis   *string         `json:"analysis"`
	Category   *string         `json:"category"   validate:"omitempty,max=50"`
	Difficulty *int            `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Status     *int            `json:"status"     validate:"omitempty,oneof=0 1"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer"     validate:"required,min=1,max=10"`
	TimeSpent  int    `json:"timeSpent"  validate:"omitempty,min=0"`
	Mode       string `json:"mode"       validate:"omitempty,oneof=practice exam review"`
}

// QuestionResponse is the full item, answers included. Admin screens and
// post-submission reviews use it.
type QuestionResponse struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Type       int             `json:"type"`
	Options    json.RawMessage `json:"options"`
	Answer     string          `json:"answer"`
	Analysis   *string         `json:"analysis"`
	Category   *string         `json:"category"`
	Difficulty int             `json:"difficulty"`
	Status     int             `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// PracticeQuestionResponse omits the answer and analysis; practice clients
// must not see them before submitting.
type PracticeQuestionResponse struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Type       int             `json:"type"`
	Options    json.RawMessage `json:"options"`
	Category   *string         `json:"category"`
	Difficulty int             `json:"difficulty"`
}

type SubmitAnswerResponse struct {
	QuestionID    string  `json:"questionId"`
	IsCorrect     bool    `json:"isCorrect"`
	CorrectAnswer string  `json:"correctAnswer"`
	Analysis      *string `json:"analysis"`
}

type MistakeResponse struct {
	Question   PracticeQuestionResponse `json:"question"`
	LastAnswer string                   `json:"lastAnswer"`
	WrongCount int                      `json:"wrongCount"`
	LastTime   time.Time                `json:"lastTime"`
}

func ToQuestionResponse(q *Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		Content:    q.Content,
		Type:       q.Type,
		Options:    q.Options,
		Answer:     q.Answer,
		Analysis:   q.Analysis,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Status:     q.Status,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func ToPracticeQuestionResponse(q *Question) PracticeQuestionResponse {
	return PracticeQuestionResponse{
		ID:         q.ID,
		Content:    q.Content,
		Type:       q.Type,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

func ToPracticeQuestionResponseList(
	questions []Question,
) []PracticeQuestionResponse {
	responses := make([]PracticeQuestionResponse, 0, len(questions))
	for i := range questions {
		responses = append(
			responses,
			ToPracticeQuestionResponse(&questions[i]),
		)
	}
	return responses
}

func ToQuestionResponseList(questions []Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		responses = append(responses, ToQuestionResponse(&questions[i]))
	}
	return responses
}
