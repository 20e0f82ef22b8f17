// repository.go

package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

type Mistake struct {
	Question
	LastAnswer string       `db:"last_answer"`
	WrongCount int          `db:"wrong_count"`
	LastTime   sql.NullTime `db:"last_time"`
}

type Repository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	Update(ctx context.Context, question *Question) error
	// DeleteCascade removes the question with its practice records and
	// favorites in one transaction.
	DeleteCascade(ctx context.Context, id string) error
	List(
		ctx context.Context,
		params ListQuestionsParams,
	) ([]Question, int64, error)
	// Random returns up to count enabled questions, optionally filtered,
	// in random order.
	Random(
		ctx context.Context,
		count int,
		category string,
		difficulty *int,
	) ([]Question, error)
	CountAll(ctx context.Context) (int64, error)
	RecordPractice(ctx context.Context, record *PracticeRecord) error
	// Mistakes aggregates the user's wrongly answered questions with the
	// most recent wrong answer per question.
	Mistakes(
		ctx context.Context,
		userID string,
		page, pageSize int,
	) ([]Mistake, int64, error)
	IsFavorite(ctx context.Context, userID, questionID string) (bool, error)
	AddFavorite(ctx context.Context, userID, questionID string) error
	RemoveFavorite(ctx context.Context, userID, questionID string) error
	Favorites(
		ctx context.Context,
		userID string,
		page, pageSize int,
	) ([]Question, int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const questionColumns = `id, content, type, options, answer, analysis,
	category, difficulty, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, q *Question) error {
	query := `
		INSERT INTO questions (id, content, type, options, answer,
		                       analysis, category, difficulty, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		q.ID,
		q.Content,
		q.Type,
		q.Options,
		q.Answer,
		q.Analysis,
		q.Category,
		q.Difficulty,
		q.Status,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	var q Question
	err := r.db.GetContext(ctx, &q, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get question: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}

	return &q, nil
}

func (r *repository) Update(ctx context.Context, q *Question) error {
	query := `
		UPDATE questions
		SET content = $2, type = $3, options = $4, answer = $5,
		    analysis = $6, category = $7, difficulty = $8, status = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		q.ID,
		q.Content,
		q.Type,
		q.Options,
		q.Answer,
		q.Analysis,
		q.Category,
		q.Difficulty,
		q.Status,
	).Scan(&q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update question: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}

	return nil
}

func (r *repository) DeleteCascade(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cleanups := []string{
			`DELETE FROM practice_records WHERE question_id = $1`,
			`DELETE FROM favorites WHERE question_id = $1`,
		}

		for _, query := range cleanups {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("delete question data: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM questions WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete question: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete question: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete question: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) List(
	ctx context.Context,
	params ListQuestionsParams,
) ([]Question, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argn := 1

	if params.EnabledOnly {
		where += ` AND status = 1`
	}

	if params.Search != "" {
		where += fmt.Sprintf(` AND content ILIKE $%d`, argn)
		args = append(args, "%"+params.Search+"%")
		argn++
	}

	if params.Category != "" {
		where += fmt.Sprintf(` AND category = $%d`, argn)
		args = append(args, params.Category)
		argn++
	}

	if params.Difficulty != nil {
		where += fmt.Sprintf(` AND difficulty = $%d`, argn)
		args = append(args, *params.Difficulty)
		argn++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM questions` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, argn, argn+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	var questions []Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	return questions, total, nil
}

func (r *repository) Random(
	ctx context.Context,
	count int,
	category string,
	difficulty *int,
) ([]Question, error) {
	where := ` WHERE status = 1`
	args := []any{}
	argn := 1

	if category != "" {
		where += fmt.Sprintf(` AND category = $%d`, argn)
		args = append(args, category)
		argn++
	}

	if difficulty != nil {
		where += fmt.Sprintf(` AND difficulty = $%d`, argn)
		args = append(args, *difficulty)
		argn++
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		fmt.Sprintf(` ORDER BY RANDOM() LIMIT $%d`, argn)
	args = append(args, count)

	var questions []Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("random questions: %w", err)
	}

	return questions, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM questions`)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}

	return count, nil
}

func (r *repository) RecordPractice(
	ctx context.Context,
	record *PracticeRecord,
) error {
	query := `
		INSERT INTO practice_records (id, user_id, question_id,
		                              user_answer, is_correct,
		                              time_spent, mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		record.ID,
		record.UserID,
		record.QuestionID,
		record.UserAnswer,
		record.IsCorrect,
		record.TimeSpent,
		record.Mode,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("record practice: %w", err)
	}

	return nil
}

func (r *repository) Mistakes(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Mistake, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(DISTINCT pr.question_id)
		FROM practice_records pr
		WHERE pr.user_id = $1 AND pr.is_correct = FALSE`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count mistakes: %w", err)
	}

	query := `
		SELECT q.id, q.content, q.type, q.options, q.answer, q.analysis,
		       q.category, q.difficulty, q.status, q.created_at,
		       q.updated_at,
		       w.last_answer, w.wrong_count, w.last_time
		FROM (
			SELECT DISTINCT ON (question_id)
			       question_id,
			       user_answer AS last_answer,
			       COUNT(*) OVER (PARTITION BY question_id)
			           AS wrong_count,
			       MAX(created_at) OVER (PARTITION BY question_id)
			           AS last_time
			FROM practice_records
			WHERE user_id = $1 AND is_correct = FALSE
			ORDER BY question_id, created_at DESC
		) w
		JOIN questions q ON q.id = w.question_id
		ORDER BY w.last_time DESC
		LIMIT $2 OFFSET $3`

	var mistakes []Mistake
	err := r.db.SelectContext(ctx, &mistakes, query,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list mistakes: %w", err)
	}

	return mistakes, total, nil
}

func (r *repository) IsFavorite(
	ctx context.Context,
	userID, questionID string,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM favorites
			WHERE user_id = $1 AND question_id = $2
		)`, userID, questionID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}

	return exists, nil
}

func (r *repository) AddFavorite(
	ctx context.Context,
	userID, questionID string,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, question_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, questionID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	return nil
}

func (r *repository) RemoveFavorite(
	ctx context.Context,
	userID, questionID string,
) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND question_id = $2`,
		userID, questionID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	return nil
}

func (r *repository) Favorites(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Question, int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	query := `
		SELECT q.id, q.content, q.type, q.options, q.answer, q.analysis,
		       q.category, q.difficulty, q.status, q.created_at,
		       q.updated_at
		FROM questions q
		JOIN favorites f ON f.question_id = q.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`

	var questions []Question
	err = r.db.SelectContext(ctx, &questions, query,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}

	return questions, total, nil
}
