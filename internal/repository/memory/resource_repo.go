package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// ResourceRepo реализует repository.ResourceRepository в памяти процесса.
// Данные не переживают перезапуск. ID выдаются счётчиками и не переиспользуются.
type ResourceRepo[P entity.Entity[P], C entity.ChildEntity[C]] struct {
	mu          sync.RWMutex
	parents     map[uint]P
	children    map[uint][]C
	nextID      uint
	nextChildID uint
}

// NewResourceRepo создает пустое хранилище
func NewResourceRepo[P entity.Entity[P], C entity.ChildEntity[C]]() *ResourceRepo[P, C] {
	return &ResourceRepo[P, C]{
		parents:     make(map[uint]P),
		children:    make(map[uint][]C),
		nextID:      1,
		nextChildID: 1,
	}
}

// NewQuestionRepo создает хранилище вопросов
func NewQuestionRepo() *ResourceRepo[entity.Question, entity.Choice] {
	return NewResourceRepo[entity.Question, entity.Choice]()
}

// NewBookRepo создает хранилище книг
func NewBookRepo() *ResourceRepo[entity.Book, entity.NoChild] {
	return NewResourceRepo[entity.Book, entity.NoChild]()
}

// Create сохраняет запись и возвращает новый ID
func (r *ResourceRepo[P, C]) Create(_ context.Context, record repository.Record[P, C]) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	r.parents[id] = record.Parent.WithID(id)
	r.storeChildren(id, record.Children)
	return id, nil
}

// GetByID возвращает копию записи вместе с детьми
func (r *ResourceRepo[P, C]) GetByID(_ context.Context, id uint) (*repository.Record[P, C], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parent, ok := r.parents[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &repository.Record[P, C]{
		Parent:   parent,
		Children: slices.Clone(r.children[id]),
	}, nil
}

// List возвращает родителей в порядке создания
func (r *ResourceRepo[P, C]) List(_ context.Context) ([]P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.parents))
	for id := range r.parents {
		ids = append(ids, id)
	}
	// ID монотонно растут, поэтому сортировка по ID совпадает с порядком вставки
	slices.Sort(ids)

	result := make([]P, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.parents[id])
	}
	return result, nil
}

// ListChildren возвращает детей существующего родителя
func (r *ResourceRepo[P, C]) ListChildren(_ context.Context, id uint) ([]C, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.parents[id]; !ok {
		return nil, apperrors.ErrNotFound
	}
	return slices.Clone(r.children[id]), nil
}

// Update перезаписывает родителя и полностью заменяет набор детей
func (r *ResourceRepo[P, C]) Update(_ context.Context, id uint, record repository.Record[P, C]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parents[id]; !ok {
		return apperrors.ErrNotFound
	}
	r.parents[id] = record.Parent.WithID(id)
	delete(r.children, id)
	r.storeChildren(id, record.Children)
	return nil
}

// Delete удаляет детей и родителя
func (r *ResourceRepo[P, C]) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parents[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.children, id)
	delete(r.parents, id)
	return nil
}

// storeChildren присваивает детям ID и ссылку на родителя. Вызывается под mu.
func (r *ResourceRepo[P, C]) storeChildren(parentID uint, children []C) {
	var zero C
	if zero.ParentKey() == "" || len(children) == 0 {
		return
	}
	stored := make([]C, len(children))
	for i, child := range children {
		stored[i] = child.WithID(r.nextChildID).WithParentID(parentID)
		r.nextChildID++
	}
	r.children[parentID] = stored
}
