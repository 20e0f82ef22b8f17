// service.go

package question

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(
	ctx context.Context,
	params ListQuestionsParams,
) ([]Question, int64, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Question, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	req CreateQuestionRequest,
) (*Question, error) {
	q := &Question{
		ID:         uuid.NewString(),
		Content:    req.Content,
		Type:       req.Type,
		Options:    req.Options,
		Answer:     normalizeAnswer(req.Answer),
		Analysis:   req.Analysis,
		Category:   req.Category,
		Difficulty: 3,
		Status:     StatusEnabled,
	}

	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.Status != nil {
		q.Status = *req.Status
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateQuestionRequest,
) (*Question, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	q.Content = req.Content
	q.Type = req.Type
	q.Options = req.Options
	q.Answer = normalizeAnswer(req.Answer)
	q.Analysis = req.Analysis
	q.Category = req.Category

	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.Status != nil {
		q.Status = *req.Status
	}

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteCascade(ctx, id)
}

// Practice returns up to count random enabled questions with answers
// stripped.
func (s *Service) Practice(
	ctx context.Context,
	count int,
	category string,
	difficulty *int,
) ([]Question, error) {
	if count < 1 || count > 100 {
		count = 10
	}

	return s.repo.Random(ctx, count, category, difficulty)
}

// Submit judges the answer against the stored one and records the attempt.
// The verdict, correct answer and analysis go back to the caller.
func (s *Service) Submit(
	ctx context.Context,
	userID string,
	req SubmitAnswerRequest,
) (*SubmitAnswerResponse, error) {
	q, err := s.repo.GetByID(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	isCorrect := normalizeAnswer(req.Answer) == q.Answer

	mode := req.Mode
	if mode == "" {
		mode = ModePractice
	}

	record := &PracticeRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: q.ID,
		UserAnswer: normalizeAnswer(req.Answer),
		IsCorrect:  isCorrect,
		TimeSpent:  req.TimeSpent,
		Mode:       mode,
	}

	if err := s.repo.RecordPractice(ctx, record); err != nil {
		return nil, err
	}

	return &SubmitAnswerResponse{
		QuestionID:    q.ID,
		IsCorrect:     isCorrect,
		CorrectAnswer: q.Answer,
		Analysis:      q.Analysis,
	}, nil
}

func (s *Service) Mistakes(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Mistake, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return s.repo.Mistakes(ctx, userID, page, pageSize)
}

// ToggleFavorite flips the favorite state and returns the new state.
func (s *Service) ToggleFavorite(
	ctx context.Context,
	userID, questionID string,
) (bool, error) {
	if _, err := s.repo.GetByID(ctx, questionID); err != nil {
		return false, err
	}

	favored, err := s.repo.IsFavorite(ctx, userID, questionID)
	if err != nil {
		return false, err
	}

	if favored {
		if err := s.repo.RemoveFavorite(ctx, userID, questionID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.repo.AddFavorite(ctx, userID, questionID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Favorites(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return s.repo.Favorites(ctx, userID, page, pageSize)
}

func (s *Service) CountAll(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}

// normalizeAnswer upper-cases and sorts the option keys so "db" and "BD"
// compare equal for multiple-choice items.
func normalizeAnswer(answer string) string {
	letters := strings.Split(strings.ToUpper(strings.TrimSpace(answer)), "")
	sort.Strings(letters)
	return strings.Join(letters, "")
}
