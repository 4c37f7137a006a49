package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"campus-quiz-service/internal/domain"
)

// QuestionLister is the slice of the question store the cache needs.
type QuestionLister interface {
	ListAll(ctx context.Context) ([]domain.Question, error)
}

// CachedAnswerKey keeps the grading oracle in process memory with a TTL so a
// submission does not rescan the whole question set. Question creation calls
// Invalidate; questions are never edited or deleted, so TTL staleness only
// matters across processes.
type CachedAnswerKey struct {
	lister QuestionLister
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	key       map[string]string
	expiresAt time.Time
}

func NewCachedAnswerKey(lister QuestionLister, ttl time.Duration) *CachedAnswerKey {
	return &CachedAnswerKey{
		lister: lister,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedAnswerKey) AnswerKey(ctx context.Context) (map[string]string, error) {
	now := c.clock()

	c.mu.RLock()
	if c.key != nil && c.expiresAt.After(now) {
		key := c.key
		c.mu.RUnlock()
		return key, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("answerkey", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.key != nil && c.expiresAt.After(now) {
			key := c.key
			c.mu.RUnlock()
			return key, nil
		}
		c.mu.RUnlock()

		questions, err := c.lister.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		key := make(map[string]string, len(questions))
		for _, q := range questions {
			key[q.ID] = q.CorrectOption
		}

		c.mu.Lock()
		c.key = key
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]string), nil
}

func (c *CachedAnswerKey) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.key = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
	return nil
}

func (c *CachedAnswerKey) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
