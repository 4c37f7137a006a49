package memory

import (
	"context"
	"sync"

	"campus-quiz-service/internal/domain"
)

// ScoreStore keeps submissions in memory. The conditional insert under the
// lock gives the same first-writer-wins guarantee the postgres store gets
// from its unique index.
type ScoreStore struct {
	mu          sync.RWMutex
	submissions map[string]domain.Submission
	nextSeq     int64
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{submissions: make(map[string]domain.Submission)}
}

func (s *ScoreStore) FindByStudent(_ context.Context, studentID string) (domain.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[studentID]
	return sub, ok, nil
}

func (s *ScoreStore) Create(_ context.Context, sub domain.Submission) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[sub.StudentID]; ok {
		return domain.Submission{}, domain.ErrDuplicateSubmission
	}
	s.nextSeq++
	sub.Seq = s.nextSeq
	s.submissions[sub.StudentID] = sub
	return sub, nil
}

func (s *ScoreStore) ListAll(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		out = append(out, sub)
	}
	return out, nil
}
