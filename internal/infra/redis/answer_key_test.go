package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"campus-quiz-service/internal/domain"
	"campus-quiz-service/internal/infra/memory"
)

func TestAnswerKeyCacheFillsRedis(t *testing.T) {
	mr, client := newTestRedis(t)
	defer mr.Close()

	lister := &countingLister{QuestionLister: seededStore()}
	cache := NewAnswerKeyCache(client, lister, time.Minute)

	key, err := cache.AnswerKey(context.Background())
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if key["q1"] != "a" || key["q2"] != "b" {
		t.Fatalf("unexpected key: %v", key)
	}
	if lister.calls != 1 {
		t.Fatalf("expected one load, got %d", lister.calls)
	}
	if !mr.Exists("quiz:answerkey") {
		t.Fatalf("expected redis hash filled")
	}

	// Second read is served from redis, loader untouched.
	if _, err := cache.AnswerKey(context.Background()); err != nil {
		t.Fatalf("answer key 2: %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected redis hit, loads=%d", lister.calls)
	}
}

func TestAnswerKeyCacheInvalidateDeletesHash(t *testing.T) {
	mr, client := newTestRedis(t)
	defer mr.Close()

	lister := &countingLister{QuestionLister: seededStore()}
	cache := NewAnswerKeyCache(client, lister, time.Minute)

	if _, err := cache.AnswerKey(context.Background()); err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:answerkey") {
		t.Fatalf("expected hash deleted")
	}

	if _, err := cache.AnswerKey(context.Background()); err != nil {
		t.Fatalf("answer key after invalidate: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected reload after invalidate, loads=%d", lister.calls)
	}
}

type countingLister struct {
	memory.QuestionLister
	calls int
}

func (l *countingLister) ListAll(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLister.ListAll(ctx)
}

func seededStore() *memory.QuestionStore {
	return memory.NewQuestionStore(
		domain.Question{ID: "q1", Text: "Q1", Options: map[string]string{"a": "x", "b": "y"}, CorrectOption: "a"},
		domain.Question{ID: "q2", Text: "Q2", Options: map[string]string{"a": "x", "b": "y"}, CorrectOption: "b"},
	)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
