package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"campus-quiz-service/internal/domain"
)

// QuestionStore persists questions in Postgres with the option map as JSONB.
type QuestionStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewQuestionStore(pool *pgxpool.Pool, timeout time.Duration) *QuestionStore {
	return &QuestionStore{pool: pool, timeout: timeout}
}

func (s *QuestionStore) Create(ctx context.Context, q domain.Question) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO questions (id, question, options, correct_option, created_at) VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.Text, options, q.CorrectOption, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *QuestionStore) ListAll(ctx context.Context) ([]domain.Question, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, question, options, correct_option, created_at FROM questions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Text, &raw, &q.CorrectOption, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// bound caps every store call so a stalled database surfaces as an error
// instead of hanging the request.
func (s *QuestionStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
