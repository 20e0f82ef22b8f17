// service_test.go

package question

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type fakeRepo struct {
	questions map[string]*Question
	records   []*PracticeRecord
	favorites map[string]map[string]struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		questions: map[string]*Question{},
		favorites: map[string]map[string]struct{}{},
	}
}

func (f *fakeRepo) add(q *Question) {
	f.questions[q.ID] = q
}

func (f *fakeRepo) Create(ctx context.Context, q *Question) error {
	f.questions[q.ID] = q
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Question, error) {
	if q, ok := f.questions[id]; ok {
		return q, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Update(ctx context.Context, q *Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return core.ErrNotFound
	}
	f.questions[q.ID] = q
	return nil
}

func (f *fakeRepo) DeleteCascade(ctx context.Context, id string) error {
	if _, ok := f.questions[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeRepo) List(
	ctx context.Context,
	params ListQuestionsParams,
) ([]Question, int64, error) {
	out := make([]Question, 0, len(f.questions))
	for _, q := range f.questions {
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Random(
	ctx context.Context,
	count int,
	category string,
	difficulty *int,
) ([]Question, error) {
	var out []Question
	for _, q := range f.questions {
		if q.Status != StatusEnabled {
			continue
		}
		if category != "" && (q.Category == nil || *q.Category != category) {
			continue
		}
		if difficulty != nil && q.Difficulty != *difficulty {
			continue
		}
		out = append(out, *q)
		if len(out) == count {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.questions)), nil
}

func (f *fakeRepo) RecordPractice(
	ctx context.Context,
	record *PracticeRecord,
) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepo) Mistakes(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Mistake, int64, error) {
	var out []Mistake
	for _, rec := range f.records {
		if rec.UserID != userID || rec.IsCorrect {
			continue
		}
		q, ok := f.questions[rec.QuestionID]
		if !ok {
			continue
		}
		out = append(out, Mistake{
			Question:   *q,
			LastAnswer: rec.UserAnswer,
			WrongCount: 1,
		})
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) IsFavorite(
	ctx context.Context,
	userID, questionID string,
) (bool, error) {
	_, ok := f.favorites[userID][questionID]
	return ok, nil
}

func (f *fakeRepo) AddFavorite(
	ctx context.Context,
	userID, questionID string,
) error {
	if f.favorites[userID] == nil {
		f.favorites[userID] = map[string]struct{}{}
	}
	f.favorites[userID][questionID] = struct{}{}
	return nil
}

func (f *fakeRepo) RemoveFavorite(
	ctx context.Context,
	userID, questionID string,
) error {
	delete(f.favorites[userID], questionID)
	return nil
}

func (f *fakeRepo) Favorites(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Question, int64, error) {
	var out []Question
	for id := range f.favorites[userID] {
		if q, ok := f.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, int64(len(out)), nil
}

func ptr[T any](v T) *T { return &v }

func seedQuestion(repo *fakeRepo, id, answer string) *Question {
	q := &Question{
		ID:         id,
		Content:    "Which processes belong to the planning group?",
		Type:       TypeMultipleChoice,
		Answer:     normalizeAnswer(answer),
		Analysis:   ptr("See the process group matrix."),
		Difficulty: 3,
		Status:     StatusEnabled,
	}
	repo.add(q)
	return q
}

func TestNormalizeAnswerIgnoresOrderAndCase(t *testing.T) {
	cases := map[string]string{
		"A":    "A",
		"a":    "A",
		"db":   "BD",
		"BD":   "BD",
		"cab":  "ABC",
		" b ":  "B",
		"BBaa": "AABB",
		"":     "",
	}

	for input, want := range cases {
		assert.Equal(t, want, normalizeAnswer(input), "input %q", input)
	}
}

func TestSubmitJudgesServerSide(t *testing.T) {
	repo := newFakeRepo()
	seedQuestion(repo, "q1", "BD")
	svc := NewService(repo)

	// Letter order and case do not matter.
	resp, err := svc.Submit(context.Background(), "u1", SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     "db",
		Mode:       ModePractice,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsCorrect)
	assert.Equal(t, "BD", resp.CorrectAnswer)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, "See the process group matrix.", *resp.Analysis)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "u1", repo.records[0].UserID)
	assert.Equal(t, "BD", repo.records[0].UserAnswer)
	assert.True(t, repo.records[0].IsCorrect)
}

func TestSubmitRecordsWrongAnswer(t *testing.T) {
	repo := newFakeRepo()
	seedQuestion(repo, "q1", "BD")
	svc := NewService(repo)

	resp, err := svc.Submit(context.Background(), "u1", SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     "AC",
		Mode:       ModeExam,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsCorrect)
	assert.Equal(t, "BD", resp.CorrectAnswer)

	require.Len(t, repo.records, 1)
	assert.False(t, repo.records[0].IsCorrect)
	assert.Equal(t, ModeExam, repo.records[0].Mode)

	mistakes, total, err := svc.Mistakes(context.Background(), "u1", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mistakes, 1)
	assert.Equal(t, "AC", mistakes[0].LastAnswer)
}

func TestSubmitDefaultsToPracticeMode(t *testing.T) {
	repo := newFakeRepo()
	seedQuestion(repo, "q1", "A")
	svc := NewService(repo)

	_, err := svc.Submit(context.Background(), "u1", SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     "A",
	})
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	assert.Equal(t, ModePractice, repo.records[0].Mode)
}

func TestSubmitUnknownQuestion(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Submit(context.Background(), "u1", SubmitAnswerRequest{
		QuestionID: "missing",
		Answer:     "A",
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateNormalizesStoredAnswer(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	q, err := svc.Create(context.Background(), CreateQuestionRequest{
		Content: "Pick two.",
		Type:    TypeMultipleChoice,
		Answer:  "ca",
	})
	require.NoError(t, err)

	assert.Equal(t, "AC", q.Answer)
	assert.Equal(t, 3, q.Difficulty)
	assert.Equal(t, StatusEnabled, q.Status)
}

func TestPracticeClampsCount(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 15; i++ {
		seedQuestion(repo, string(rune('a'+i)), "A")
	}
	svc := NewService(repo)

	// Out-of-range counts fall back to the default of 10.
	questions, err := svc.Practice(context.Background(), 0, "", nil)
	require.NoError(t, err)
	assert.Len(t, questions, 10)

	questions, err = svc.Practice(context.Background(), 101, "", nil)
	require.NoError(t, err)
	assert.Len(t, questions, 10)

	questions, err = svc.Practice(context.Background(), 5, "", nil)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestPracticeSkipsDisabledQuestions(t *testing.T) {
	repo := newFakeRepo()
	seedQuestion(repo, "q1", "A")
	disabled := seedQuestion(repo, "q2", "A")
	disabled.Status = StatusDisabled
	svc := NewService(repo)

	questions, err := svc.Practice(context.Background(), 10, "", nil)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "q1", questions[0].ID)
}

func TestToggleFavoriteFlipsState(t *testing.T) {
	repo := newFakeRepo()
	seedQuestion(repo, "q1", "A")
	svc := NewService(repo)

	favored, err := svc.ToggleFavorite(context.Background(), "u1", "q1")
	require.NoError(t, err)
	assert.True(t, favored)

	favorites, total, err := svc.Favorites(context.Background(), "u1", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, favorites, 1)

	favored, err = svc.ToggleFavorite(context.Background(), "u1", "q1")
	require.NoError(t, err)
	assert.False(t, favored)

	_, total, err = svc.Favorites(context.Background(), "u1", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestToggleFavoriteUnknownQuestion(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.ToggleFavorite(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
