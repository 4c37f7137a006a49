package memory

import (
	"context"
	"sync"

	"campus-quiz-service/internal/domain"
)

// QuestionStore is an in-memory question set, useful for tests and demos.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewQuestionStore(seed ...domain.Question) *QuestionStore {
	return &QuestionStore{questions: append([]domain.Question(nil), seed...)}
}

func (s *QuestionStore) Create(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
	return nil
}

func (s *QuestionStore) ListAll(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

func (s *QuestionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}
