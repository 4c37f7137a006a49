package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"campus-quiz-service/internal/domain"
)

const uniqueViolation = "23505"

// ScoreStore persists one submission per student. The unique index on
// student_id is the authoritative guard: two concurrent submits both passing
// the application pre-check still collapse to a single row, the loser seeing
// domain.ErrDuplicateSubmission.
type ScoreStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewScoreStore(pool *pgxpool.Pool, timeout time.Duration) *ScoreStore {
	return &ScoreStore{pool: pool, timeout: timeout}
}

func (s *ScoreStore) FindByStudent(ctx context.Context, studentID string) (domain.Submission, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var sub domain.Submission
	err := s.pool.QueryRow(ctx,
		`SELECT seq, student_id, score, submitted_at FROM quiz_scores WHERE student_id = $1`,
		studentID).Scan(&sub.Seq, &sub.StudentID, &sub.Score, &sub.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, false, nil
	}
	if err != nil {
		return domain.Submission{}, false, fmt.Errorf("find score: %w", err)
	}
	return sub, true, nil
}

func (s *ScoreStore) Create(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO quiz_scores (student_id, score, submitted_at) VALUES ($1, $2, $3) RETURNING seq`,
		sub.StudentID, sub.Score, sub.SubmittedAt).Scan(&sub.Seq)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Submission{}, domain.ErrDuplicateSubmission
		}
		return domain.Submission{}, fmt.Errorf("insert score: %w", err)
	}
	return sub, nil
}

func (s *ScoreStore) ListAll(ctx context.Context) ([]domain.Submission, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT seq, student_id, score, submitted_at FROM quiz_scores`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.Seq, &sub.StudentID, &sub.Score, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return subs, nil
}

func (s *ScoreStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
