package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// CachedResourceRepo оборачивает хранилище и кеширует GetByID в Redis.
// Ошибки кеша только логируются: источником истины остаётся обёрнутое хранилище.
type CachedResourceRepo[P entity.Entity[P], C entity.ChildEntity[C]] struct {
	inner  repository.ResourceRepository[P, C]
	cache  repository.CacheRepository
	prefix string
	ttl    time.Duration
	log    *logrus.Entry
}

// Префиксы ключей кеша для ресурсов
const (
	QuestionKeyPrefix = "question"
	BookKeyPrefix     = "book"
)

// NewCachedResourceRepo создает кеширующую обёртку. prefix задаёт пространство ключей, например "question".
func NewCachedResourceRepo[P entity.Entity[P], C entity.ChildEntity[C]](
	inner repository.ResourceRepository[P, C],
	cache repository.CacheRepository,
	prefix string,
	ttl time.Duration,
	log *logrus.Logger,
) *CachedResourceRepo[P, C] {
	return &CachedResourceRepo[P, C]{
		inner:  inner,
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
		log:    log.WithFields(logrus.Fields{"component": "resource_cache", "resource": prefix}),
	}
}

func (r *CachedResourceRepo[P, C]) key(id uint) string {
	return fmt.Sprintf("%s:%d", r.prefix, id)
}

// Create сохраняет запись и сбрасывает кеш по новому ID: после пересоздания схемы
// ID выдаются заново, и под ключом может лежать удалённая запись
func (r *CachedResourceRepo[P, C]) Create(ctx context.Context, record repository.Record[P, C]) (uint, error) {
	id, err := r.inner.Create(ctx, record)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, id)
	return id, nil
}

// GetByID сначала читает кеш, при промахе идёт в хранилище и заполняет кеш
func (r *CachedResourceRepo[P, C]) GetByID(ctx context.Context, id uint) (*repository.Record[P, C], error) {
	key := r.key(id)

	var cached repository.Record[P, C]
	err := r.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		r.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	record, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, key, record, r.ttl); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return record, nil
}

func (r *CachedResourceRepo[P, C]) List(ctx context.Context) ([]P, error) {
	return r.inner.List(ctx)
}

func (r *CachedResourceRepo[P, C]) ListChildren(ctx context.Context, id uint) ([]C, error) {
	return r.inner.ListChildren(ctx, id)
}

// Update обновляет запись и сбрасывает её кеш
func (r *CachedResourceRepo[P, C]) Update(ctx context.Context, id uint, record repository.Record[P, C]) error {
	if err := r.inner.Update(ctx, id, record); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// Delete удаляет запись и сбрасывает её кеш
func (r *CachedResourceRepo[P, C]) Delete(ctx context.Context, id uint) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedResourceRepo[P, C]) invalidate(ctx context.Context, id uint) {
	key := r.key(id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("cache invalidation failed")
	}
}

// ClearResourceCache удаляет все закешированные записи указанных ресурсов.
// Вызывается после пересоздания схемы, когда ID начинают выдаваться заново.
func ClearResourceCache(ctx context.Context, cache repository.CacheRepository, prefixes ...string) (int64, error) {
	var total int64
	for _, prefix := range prefixes {
		n, err := cache.DeleteByPattern(ctx, prefix+":*")
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to clear %s cache: %w", prefix, err)
		}
	}
	return total, nil
}
