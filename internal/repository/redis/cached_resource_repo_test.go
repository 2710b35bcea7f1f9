package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/internal/repository/memory"
)

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newCachedQuestions(t *testing.T, cache *MockCacheRepository) (*CachedResourceRepo[entity.Question, entity.Choice], *memory.ResourceRepo[entity.Question, entity.Choice]) {
	t.Helper()
	inner := memory.NewQuestionRepo()
	return NewCachedResourceRepo[entity.Question, entity.Choice](inner, cache, "question", time.Minute, silentLogger()), inner
}

func seedQuestion(t *testing.T, inner *memory.ResourceRepo[entity.Question, entity.Choice]) uint {
	t.Helper()
	id, err := inner.Create(context.Background(), repository.Record[entity.Question, entity.Choice]{
		Parent:   entity.Question{QuestionText: "2+2?"},
		Children: []entity.Choice{{ChoiceText: "4", IsCorrect: true}},
	})
	require.NoError(t, err)
	return id
}

func TestCachedResourceRepo_GetByID_MissFillsCache(t *testing.T) {
	cache := new(MockCacheRepository)
	repo, inner := newCachedQuestions(t, cache)
	id := seedQuestion(t, inner)
	ctx := context.Background()

	cache.On("GetJSON", ctx, "question:1", mock.Anything).Return(apperrors.ErrNotFound).Once()
	cache.On("SetJSON", ctx, "question:1", mock.Anything, time.Minute).Return(nil).Once()

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2+2?", rec.Parent.QuestionText)
	cache.AssertExpectations(t)
}

func TestCachedResourceRepo_GetByID_Hit(t *testing.T) {
	cache := new(MockCacheRepository)
	repo, _ := newCachedQuestions(t, cache)
	ctx := context.Background()

	// В хранилище записи нет: ответ может прийти только из кеша
	cache.On("GetJSON", ctx, "question:5", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*repository.Record[entity.Question, entity.Choice])
			dest.Parent = entity.Question{ID: 5, QuestionText: "cached"}
		}).
		Return(nil).Once()

	rec, err := repo.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "cached", rec.Parent.QuestionText)
	cache.AssertExpectations(t)
	cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedResourceRepo_CacheFailureFallsThrough(t *testing.T) {
	cache := new(MockCacheRepository)
	repo, inner := newCachedQuestions(t, cache)
	id := seedQuestion(t, inner)
	ctx := context.Background()

	cache.On("GetJSON", ctx, "question:1", mock.Anything).Return(errors.New("connection refused"))
	cache.On("SetJSON", ctx, "question:1", mock.Anything, time.Minute).Return(errors.New("connection refused"))

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2+2?", rec.Parent.QuestionText)
}

func TestCachedResourceRepo_NotFoundIsNotCached(t *testing.T) {
	cache := new(MockCacheRepository)
	repo, _ := newCachedQuestions(t, cache)
	ctx := context.Background()

	cache.On("GetJSON", ctx, "question:9", mock.Anything).Return(apperrors.ErrNotFound)

	_, err := repo.GetByID(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedResourceRepo_UpdateAndDeleteInvalidate(t *testing.T) {
	cache := new(MockCacheRepository)
	repo, inner := newCachedQuestions(t, cache)
	id := seedQuestion(t, inner)
	ctx := context.Background()

	cache.On("Delete", ctx, "question:1").Return(nil).Twice()

	err := repo.Update(ctx, id, repository.Record[entity.Question, entity.Choice]{
		Parent: entity.Question{QuestionText: "3+3?"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, id))

	cache.AssertExpectations(t)
}

func TestCachedResourceRepo_FailedDeleteKeepsCache(t *testing.T) {
	cache := new(MockCacheRepository)
	repo, _ := newCachedQuestions(t, cache)

	err := repo.Delete(context.Background(), 77)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// mapCache — кеш в памяти, общий для нескольких экземпляров хранилища
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) DeleteByPattern(_ context.Context, pattern string) (int64, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			n++
		}
	}
	return n, nil
}

func (c *mapCache) Increment(context.Context, string) (int64, error) { return 0, nil }

func (c *mapCache) Expire(context.Context, string, time.Duration) error { return nil }

func TestCachedResourceRepo_CreateOverwritesStaleEntryForReusedID(t *testing.T) {
	cache := newMapCache()
	ctx := context.Background()

	// Первое хранилище: запись попадает в кеш под ключом question:1
	before := NewCachedResourceRepo[entity.Question, entity.Choice](memory.NewQuestionRepo(), cache, QuestionKeyPrefix, time.Minute, silentLogger())
	id, err := before.Create(ctx, repository.Record[entity.Question, entity.Choice]{Parent: entity.Question{QuestionText: "old"}})
	require.NoError(t, err)
	_, err = before.GetByID(ctx, id)
	require.NoError(t, err)

	// Пересозданное хранилище снова выдаёт ID 1
	after := NewCachedResourceRepo[entity.Question, entity.Choice](memory.NewQuestionRepo(), cache, QuestionKeyPrefix, time.Minute, silentLogger())
	newID, err := after.Create(ctx, repository.Record[entity.Question, entity.Choice]{
		Parent:   entity.Question{QuestionText: "new"},
		Children: []entity.Choice{{ChoiceText: "yes", IsCorrect: true}},
	})
	require.NoError(t, err)
	require.Equal(t, id, newID)

	rec, err := after.GetByID(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Parent.QuestionText)
	require.Len(t, rec.Children, 1)
	assert.Equal(t, "yes", rec.Children[0].ChoiceText)
}

func TestCachedResourceRepo_FailedCreateKeepsCache(t *testing.T) {
	cache := new(MockCacheRepository)
	inner := new(failingCreateRepo)
	repo := NewCachedResourceRepo[entity.Question, entity.Choice](inner, cache, QuestionKeyPrefix, time.Minute, silentLogger())

	_, err := repo.Create(context.Background(), repository.Record[entity.Question, entity.Choice]{})
	require.Error(t, err)
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// failingCreateRepo — хранилище, в котором создание всегда завершается ошибкой
type failingCreateRepo struct {
	*memory.ResourceRepo[entity.Question, entity.Choice]
}

func (failingCreateRepo) Create(context.Context, repository.Record[entity.Question, entity.Choice]) (uint, error) {
	return 0, errors.New("insert failed")
}

func TestClearResourceCache_RemovesStaleRecordsAfterReset(t *testing.T) {
	cache := newMapCache()
	ctx := context.Background()

	repo := NewCachedResourceRepo[entity.Question, entity.Choice](memory.NewQuestionRepo(), cache, QuestionKeyPrefix, time.Minute, silentLogger())
	id, err := repo.Create(ctx, repository.Record[entity.Question, entity.Choice]{Parent: entity.Question{QuestionText: "old"}})
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, cache.SetJSON(ctx, "ratelimit:write:1", 1, time.Minute))

	n, err := ClearResourceCache(ctx, cache, QuestionKeyPrefix, BookKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Пустое хранилище после reset: запись должна отсутствовать
	empty := NewCachedResourceRepo[entity.Question, entity.Choice](memory.NewQuestionRepo(), cache, QuestionKeyPrefix, time.Minute, silentLogger())
	_, err = empty.GetByID(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var counter int
	assert.NoError(t, cache.GetJSON(ctx, "ratelimit:write:1", &counter), "other keys stay untouched")
}

func TestClearResourceCache_PropagatesError(t *testing.T) {
	cache := new(MockCacheRepository)
	cache.On("DeleteByPattern", mock.Anything, "question:*").Return(int64(0), errors.New("redis down")).Once()

	_, err := ClearResourceCache(context.Background(), cache, QuestionKeyPrefix, BookKeyPrefix)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question cache")
	cache.AssertNotCalled(t, "DeleteByPattern", mock.Anything, "book:*")
}
