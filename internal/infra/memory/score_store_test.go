package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campus-quiz-service/internal/domain"
)

func TestScoreStoreRejectsSecondSubmission(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	first, err := store.Create(ctx, domain.Submission{StudentID: "S1", Score: 3, SubmittedAt: time.Unix(1, 0)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Seq == 0 {
		t.Fatalf("expected sequence assigned")
	}

	if _, err := store.Create(ctx, domain.Submission{StudentID: "S1", Score: 5}); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	sub, ok, err := store.FindByStudent(ctx, "S1")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if sub.Score != 3 {
		t.Fatalf("rejected attempt must not change score, got %d", sub.Score)
	}
}

func TestScoreStoreConcurrentCreateKeepsOne(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Create(ctx, domain.Submission{StudentID: "S1", Score: i})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, domain.ErrDuplicateSubmission) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one stored submission, got %d", len(all))
	}
}

func TestScoreStoreSequenceIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	a, err := store.Create(ctx, domain.Submission{StudentID: "S1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := store.Create(ctx, domain.Submission{StudentID: "S2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Seq <= a.Seq {
		t.Fatalf("expected increasing sequence, got %d then %d", a.Seq, b.Seq)
	}
}

func TestQuestionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()

	if err := store.Create(ctx, domain.Question{ID: "q1", Text: "Q?", Options: map[string]string{"a": "x"}, CorrectOption: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != "q1" {
		t.Fatalf("unexpected listing: %+v", all)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("count: %d err=%v", count, err)
	}
}
