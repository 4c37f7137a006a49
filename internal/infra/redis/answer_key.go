package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"campus-quiz-service/internal/infra/memory"
)

const answerKeyKey = "quiz:answerkey"

// AnswerKeyCache keeps the grading oracle in a Redis hash shared across
// instances: HSET quiz:answerkey {questionID} {correctOption}. A cache miss
// refills from the question store behind singleflight; question creation
// deletes the hash so every instance regrades against the fresh set.
type AnswerKeyCache struct {
	client *redis.Client
	lister memory.QuestionLister
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, lister memory.QuestionLister, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		lister: lister,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context) (map[string]string, error) {
	cached, err := c.client.HGetAll(ctx, answerKeyKey).Result()
	if err == nil && len(cached) > 0 {
		return cached, nil
	}

	result, err, _ := c.sf.Do(answerKeyKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the hash.
		cached, err := c.client.HGetAll(ctx, answerKeyKey).Result()
		if err == nil && len(cached) > 0 {
			return cached, nil
		}

		questions, err := c.lister.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		key := make(map[string]string, len(questions))
		for _, q := range questions {
			key[q.ID] = q.CorrectOption
		}

		if len(key) > 0 {
			pipe := c.client.Pipeline()
			for questionID, correctOption := range key {
				pipe.HSet(ctx, answerKeyKey, questionID, correctOption)
			}
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, answerKeyKey, ttl)
			}
			// Best-effort: grading still works off the loaded key if the
			// cache write fails.
			_, _ = pipe.Exec(ctx)
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]string), nil
}

func (c *AnswerKeyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, answerKeyKey).Err()
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
