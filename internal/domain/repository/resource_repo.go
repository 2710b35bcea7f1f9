package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// Record объединяет родительскую сущность и полный набор её дочерних записей
type Record[P any, C any] struct {
	Parent   P   `json:"parent"`
	Children []C `json:"children"`
}

// ResourceRepository определяет CRUD-операции над сущностью с дочерними записями.
// Единственная ожидаемая ошибка предметной области — apperrors.ErrNotFound.
type ResourceRepository[P entity.Entity[P], C entity.ChildEntity[C]] interface {
	// Create сохраняет родителя и детей, возвращает присвоенный ID
	Create(ctx context.Context, record Record[P, C]) (uint, error)
	// GetByID возвращает родителя вместе со всеми детьми
	GetByID(ctx context.Context, id uint) (*Record[P, C], error)
	// List возвращает всех родителей без детей в порядке возрастания ID
	List(ctx context.Context) ([]P, error)
	// ListChildren возвращает детей родителя с указанным ID
	ListChildren(ctx context.Context, id uint) ([]C, error)
	// Update перезаписывает поля родителя и заменяет набор детей целиком
	Update(ctx context.Context, id uint, record Record[P, C]) error
	// Delete удаляет детей, затем родителя
	Delete(ctx context.Context, id uint) error
}

// QuestionRepository — хранилище вопросов с вариантами ответов
type QuestionRepository = ResourceRepository[entity.Question, entity.Choice]

// BookRepository — хранилище книг
type BookRepository = ResourceRepository[entity.Book, entity.NoChild]
