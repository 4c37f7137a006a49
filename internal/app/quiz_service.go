package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"campus-quiz-service/internal/domain"
)

// TopN is how many leaderboard rows the truncated queries return.
const TopN = 10

// QuestionStore holds the quiz question set (with answer keys).
type QuestionStore interface {
	Create(ctx context.Context, q domain.Question) error
	ListAll(ctx context.Context) ([]domain.Question, error)
	Count(ctx context.Context) (int, error)
}

// ScoreStore persists at most one submission per student. Create must reject
// a second submission for the same student with domain.ErrDuplicateSubmission,
// enforced at the storage level so concurrent submits cannot both win.
type ScoreStore interface {
	FindByStudent(ctx context.Context, studentID string) (domain.Submission, bool, error)
	Create(ctx context.Context, sub domain.Submission) (domain.Submission, error)
	ListAll(ctx context.Context) ([]domain.Submission, error)
}

// NameResolver maps student ids to display names in one batch call.
// Missing ids are simply absent from the returned map.
type NameResolver interface {
	ResolveNames(ctx context.Context, studentIDs []string) (map[string]string, error)
}

// AnswerKeySource supplies the grading oracle: question id -> correct option.
// Implementations cache it; Invalidate is called when a question is created.
type AnswerKeySource interface {
	AnswerKey(ctx context.Context) (map[string]string, error)
	Invalidate(ctx context.Context) error
}

// QuizService contains the quiz use cases: grading, leaderboard assembly and
// question administration.
type QuizService struct {
	questions QuestionStore
	scores    ScoreStore
	resolver  NameResolver
	answerKey AnswerKeySource
	now       func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewQuizService(questions QuestionStore, scores ScoreStore, resolver NameResolver, answerKey AnswerKeySource) *QuizService {
	return NewQuizServiceWithClock(questions, scores, resolver, answerKey, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(questions QuestionStore, scores ScoreStore, resolver NameResolver, answerKey AnswerKeySource, now func() time.Time) *QuizService {
	return &QuizService{
		questions:   questions,
		scores:      scores,
		resolver:    resolver,
		answerKey:   answerKey,
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Submit grades a student's answers against the answer key and persists the
// resulting score. A student may submit exactly once: a fast pre-check catches
// the common retry, and the store's uniqueness guarantee closes the race
// between two in-flight submits for the same student.
func (s *QuizService) Submit(ctx context.Context, studentID string, answers map[string]string) (int, error) {
	if studentID == "" {
		return 0, domain.ErrStudentIDRequired
	}
	if len(answers) == 0 {
		return 0, domain.ErrAnswersRequired
	}

	if _, exists, err := s.scores.FindByStudent(ctx, studentID); err != nil {
		return 0, err
	} else if exists {
		return 0, domain.ErrDuplicateSubmission
	}

	key, err := s.answerKey.AnswerKey(ctx)
	if err != nil {
		return 0, err
	}

	// Unknown question ids in answers are ignored; unanswered questions
	// simply score nothing.
	score := 0
	for questionID, correctOption := range key {
		if answers[questionID] == correctOption {
			score++
		}
	}

	if _, err := s.scores.Create(ctx, domain.Submission{
		StudentID:   studentID,
		Score:       score,
		SubmittedAt: s.now(),
	}); err != nil {
		return 0, err
	}

	s.broadcast(ctx)
	return score, nil
}

// Status reports whether the student has completed the quiz; the leaderboard
// is only assembled once they have.
func (s *QuizService) Status(ctx context.Context, studentID string) (domain.Status, error) {
	if studentID == "" {
		return domain.Status{}, domain.ErrStudentIDRequired
	}

	_, exists, err := s.scores.FindByStudent(ctx, studentID)
	if err != nil {
		return domain.Status{}, err
	}
	if !exists {
		return domain.Status{Completed: false}, nil
	}

	lb, err := s.Leaderboard(ctx, studentID)
	if err != nil {
		return domain.Status{}, err
	}
	return domain.Status{Completed: true, Leaderboard: &lb}, nil
}

// Leaderboard returns the top entries plus the requester's rank, whether or
// not they have submitted (rank is 0 when they have not).
func (s *QuizService) Leaderboard(ctx context.Context, studentID string) (domain.Leaderboard, error) {
	entries, err := s.rankedEntries(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	rank := rankOf(entries, studentID)
	top := entries
	if len(top) > TopN {
		top = top[:TopN]
	}
	s.enrich(ctx, top)

	return domain.Leaderboard{
		Entries:       top,
		StudentRank:   rank,
		TotalStudents: len(entries),
	}, nil
}

// Completion is the untruncated report: the full ranking, the requester's own
// name and score, and the total question count.
func (s *QuizService) Completion(ctx context.Context, studentID string) (domain.Completion, error) {
	if studentID == "" {
		return domain.Completion{}, domain.ErrStudentIDRequired
	}

	total, err := s.questions.Count(ctx)
	if err != nil {
		return domain.Completion{}, err
	}

	sub, exists, err := s.scores.FindByStudent(ctx, studentID)
	if err != nil {
		return domain.Completion{}, err
	}
	if !exists {
		return domain.Completion{Completed: false}, nil
	}

	entries, err := s.rankedEntries(ctx)
	if err != nil {
		return domain.Completion{}, err
	}
	s.enrich(ctx, entries)

	name := domain.UnknownName
	if rank := rankOf(entries, studentID); rank > 0 {
		name = entries[rank-1].Name
	}
	return domain.Completion{
		Completed:      true,
		Entries:        entries,
		StudentRank:    rankOf(entries, studentID),
		StudentName:    name,
		StudentScore:   sub.Score,
		TotalQuestions: total,
	}, nil
}

// CreateQuestion validates and persists a new question, then invalidates the
// cached answer key so the next submission grades against the fresh set.
func (s *QuizService) CreateQuestion(ctx context.Context, text string, options map[string]string, correctOption string) (domain.Question, error) {
	if text == "" {
		return domain.Question{}, domain.ErrQuestionTextRequired
	}
	if len(options) == 0 {
		return domain.Question{}, domain.ErrOptionsRequired
	}
	for key := range options {
		if !domain.ValidOptionKey(key) {
			return domain.Question{}, domain.ErrInvalidOptionKey
		}
	}
	if _, ok := options[correctOption]; !ok {
		return domain.Question{}, domain.ErrCorrectOptionMismatch
	}

	question := domain.Question{
		ID:            uuid.NewString(),
		Text:          text,
		Options:       options,
		CorrectOption: correctOption,
		CreatedAt:     s.now(),
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return domain.Question{}, err
	}
	if err := s.answerKey.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("answer key invalidation failed; cache will expire on TTL")
	}
	return question, nil
}

// ListQuestions returns all questions with the correct option stripped.
func (s *QuizService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.questions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sanitized := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		sanitized = append(sanitized, q.Sanitized())
	}
	return sanitized, nil
}

// Subscribe returns a channel that receives a leaderboard frame after every
// accepted submission, starting with the current standing. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx, "")
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

// broadcast pushes a fresh leaderboard frame to all subscribers. Slow
// consumers have their stale frame dropped rather than blocking the sender.
func (s *QuizService) broadcast(ctx context.Context) {
	s.mu.Lock()
	if len(s.subscribers) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	lb, err := s.Leaderboard(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard broadcast skipped")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// rankedEntries loads every submission and orders them: score descending,
// earlier timestamp first, insertion sequence as the final tie-break so the
// order is total and repeatable.
func (s *QuizService) rankedEntries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	subs, err := s.scores.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Score != subs[j].Score {
			return subs[i].Score > subs[j].Score
		}
		if !subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
		}
		return subs[i].Seq < subs[j].Seq
	})

	entries := make([]domain.LeaderboardEntry, 0, len(subs))
	for i, sub := range subs {
		entries = append(entries, domain.LeaderboardEntry{
			StudentID:   sub.StudentID,
			Score:       sub.Score,
			SubmittedAt: sub.SubmittedAt,
			Rank:        i + 1,
		})
	}
	return entries, nil
}

// enrich fills in display names for the given entries with a single batch
// lookup. A failed or partial resolution never fails the request; unknown
// students keep the sentinel name.
func (s *QuizService) enrich(ctx context.Context, entries []domain.LeaderboardEntry) {
	if len(entries) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.StudentID]; ok {
			continue
		}
		seen[e.StudentID] = struct{}{}
		ids = append(ids, e.StudentID)
	}

	names, err := s.resolver.ResolveNames(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("name resolution failed; serving leaderboard without names")
		names = nil
	}
	for i := range entries {
		if name, ok := names[entries[i].StudentID]; ok && name != "" {
			entries[i].Name = name
		} else {
			entries[i].Name = domain.UnknownName
		}
	}
}

func rankOf(entries []domain.LeaderboardEntry, studentID string) int {
	if studentID == "" {
		return 0
	}
	for _, e := range entries {
		if e.StudentID == studentID {
			return e.Rank
		}
	}
	return 0
}
