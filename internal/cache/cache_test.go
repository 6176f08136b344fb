package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func sampleQuiz(id string) *models.Quiz {
	answer := "Paris"
	return &models.Quiz{
		ID:          id,
		Title:       "Capitals",
		TotalPoints: 5,
		Status:      models.QuizActive,
		Questions: []models.QuizQuestion{
			{QuizID: id, QuestionID: "q1", Position: 0, Question: &models.Question{
				ID: "q1", Title: "Capital of France?", Type: models.ShortAnswer, CorrectAnswer: &answer, Points: 5,
			}},
		},
	}
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	var got string
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:bank:1", 1, 0))
	require.NoError(t, c.Set(ctx, "quiz:bank:2", 2, 0))
	require.NoError(t, c.Set(ctx, "other", 3, 0))

	require.NoError(t, c.DeletePattern(ctx, "quiz:bank:*"))

	assert.False(t, mr.Exists("quiz:bank:1"))
	assert.False(t, mr.Exists("quiz:bank:2"))
	assert.True(t, mr.Exists("other"))
}

func TestQuizBankCache_ReadThrough(t *testing.T) {
	c, mr := newTestCache(t)
	bank := NewQuizBankCache(c, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	var calls int32
	load := func(ctx context.Context, quizID string) (*models.Quiz, error) {
		atomic.AddInt32(&calls, 1)
		return sampleQuiz(quizID), nil
	}

	first, err := bank.Get(ctx, "quiz-1", load)
	require.NoError(t, err)
	second, err := bank.Get(ctx, "quiz-1", load)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.Title, second.Title)
	require.Len(t, second.OrderedQuestions(), 1)
	assert.Equal(t, "Paris", *second.OrderedQuestions()[0].CorrectAnswer)

	ttl := mr.TTL("quiz:bank:quiz-1")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+6*time.Second)
}

func TestQuizBankCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	bank := NewQuizBankCache(c, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	var calls int32
	load := func(ctx context.Context, quizID string) (*models.Quiz, error) {
		atomic.AddInt32(&calls, 1)
		return sampleQuiz(quizID), nil
	}

	_, err := bank.Get(ctx, "quiz-1", load)
	require.NoError(t, err)
	_, err = bank.Get(ctx, "quiz-2", load)
	require.NoError(t, err)

	bank.Invalidate(ctx, "quiz-1")
	_, err = bank.Get(ctx, "quiz-1", load)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	bank.InvalidateAll(ctx)
	_, err = bank.Get(ctx, "quiz-2", load)
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestQuizBankCache_RedisDownFallsBackToLoader(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bank := NewQuizBankCache(NewRedisCache(client, logger), time.Minute, logger)

	quiz, err := bank.Get(context.Background(), "quiz-1", func(ctx context.Context, quizID string) (*models.Quiz, error) {
		return sampleQuiz(quizID), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "quiz-1", quiz.ID)
}

func TestQuizBankCache_ConcurrentMissesLoadOnce(t *testing.T) {
	c, _ := newTestCache(t)
	bank := NewQuizBankCache(c, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context, quizID string) (*models.Quiz, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return sampleQuiz(quizID), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bank.Get(ctx, "quiz-1", load)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}
