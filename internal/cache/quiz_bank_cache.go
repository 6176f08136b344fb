package cache

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"golang.org/x/sync/singleflight"
)

const quizBankKeyPrefix = "quiz:bank:"

// QuizBankLoader loads a quiz with its full question bank from the system of record.
type QuizBankLoader func(ctx context.Context, quizID string) (*models.Quiz, error)

// QuizBankCache is a read-through cache of resolved quiz aggregates used when grading.
// Redis failures degrade to the loader; they never fail a read.
type QuizBankCache struct {
	cache  CacheService
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizBankCache(cache CacheService, ttl time.Duration, logger *slog.Logger) *QuizBankCache {
	return &QuizBankCache{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func quizBankKey(quizID string) string {
	return quizBankKeyPrefix + quizID
}

// Get returns the cached aggregate for quizID, calling load at most once per key across
// concurrent misses.
func (c *QuizBankCache) Get(ctx context.Context, quizID string, load QuizBankLoader) (*models.Quiz, error) {
	key := quizBankKey(quizID)

	var quiz models.Quiz
	err := c.cache.Get(ctx, key, &quiz)
	if err == nil {
		return &quiz, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("Quiz bank cache read failed", "quiz_id", quizID, "error", err)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var cached models.Quiz
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}

		loaded, err := load(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, loaded, c.ttlWithJitter()); err != nil {
			c.logger.Warn("Quiz bank cache write failed", "quiz_id", quizID, "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Quiz), nil
}

// Invalidate drops the cached aggregates for the given quizzes.
func (c *QuizBankCache) Invalidate(ctx context.Context, quizIDs ...string) {
	keys := make([]string, 0, len(quizIDs))
	for _, id := range quizIDs {
		keys = append(keys, quizBankKey(id))
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Quiz bank cache invalidation failed", "quiz_ids", quizIDs, "error", err)
	}
}

// InvalidateAll drops every cached aggregate. Used when a question changes, since any
// quiz may embed it.
func (c *QuizBankCache) InvalidateAll(ctx context.Context) {
	if err := c.cache.DeletePattern(ctx, quizBankKeyPrefix+"*"); err != nil {
		c.logger.Warn("Quiz bank cache flush failed", "error", err)
	}
}

func (c *QuizBankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
