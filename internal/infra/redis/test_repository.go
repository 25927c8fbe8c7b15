package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"mocktest-service/internal/domain"
)

// TestLoader fetches test definitions from a backing store (e.g., document DB).
type TestLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.MockTest, error)
}

// TestRepository caches whole test definitions in Redis and falls back to a
// loader on cache miss. Grading needs the full question payload
// (classification fields included), so the definition is stored as one JSON
// document: SET mocktest:{testID} {json}.
type TestRepository struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTestRepository(client *redis.Client, loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.MockTest, error) {
	key := r.key(testID)

	if test, ok := r.cached(ctx, key); ok {
		return test, nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if test, ok := r.cached(ctx, key); ok {
			return test, nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.MockTest{}, err
		}

		data, err := json.Marshal(test)
		if err != nil {
			return domain.MockTest{}, fmt.Errorf("marshal test: %w", err)
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()

		return test, nil
	})
	if err != nil {
		return domain.MockTest{}, err
	}
	return result.(domain.MockTest), nil
}

func (r *TestRepository) cached(ctx context.Context, key string) (domain.MockTest, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return domain.MockTest{}, false
	}
	var test domain.MockTest
	if err := json.Unmarshal(raw, &test); err != nil {
		// Poisoned cache entry; treat as a miss and let the loader refill.
		return domain.MockTest{}, false
	}
	return test, true
}

func (r *TestRepository) key(testID string) string {
	return "mocktest:" + testID
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
