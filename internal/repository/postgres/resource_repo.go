package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// ResourceRepo реализует repository.ResourceRepository поверх GORM.
// Изменяющие операции выполняются в одной транзакции.
type ResourceRepo[P entity.Entity[P], C entity.ChildEntity[C]] struct {
	db        *gorm.DB
	parentKey string
}

// NewResourceRepo создает репозиторий для пары таблиц родитель/дети
func NewResourceRepo[P entity.Entity[P], C entity.ChildEntity[C]](db *gorm.DB) *ResourceRepo[P, C] {
	var zero C
	return &ResourceRepo[P, C]{db: db, parentKey: zero.ParentKey()}
}

// NewQuestionRepo создает репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *ResourceRepo[entity.Question, entity.Choice] {
	return NewResourceRepo[entity.Question, entity.Choice](db)
}

// NewBookRepo создает репозиторий книг
func NewBookRepo(db *gorm.DB) *ResourceRepo[entity.Book, entity.NoChild] {
	return NewResourceRepo[entity.Book, entity.NoChild](db)
}

func (r *ResourceRepo[P, C]) hasChildren() bool {
	return r.parentKey != ""
}

// Create создает родителя, затем его детей
func (r *ResourceRepo[P, C]) Create(ctx context.Context, record repository.Record[P, C]) (uint, error) {
	parent := record.Parent.WithID(0)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&parent).Error; err != nil {
			return err
		}
		return r.insertChildren(tx, parent.GetID(), record.Children)
	})
	if err != nil {
		return 0, err
	}
	return parent.GetID(), nil
}

// GetByID возвращает родителя и его детей
func (r *ResourceRepo[P, C]) GetByID(ctx context.Context, id uint) (*repository.Record[P, C], error) {
	db := r.db.WithContext(ctx)
	parent, err := r.findParent(db, id)
	if err != nil {
		return nil, err
	}
	children, err := r.findChildren(db, id)
	if err != nil {
		return nil, err
	}
	return &repository.Record[P, C]{Parent: parent, Children: children}, nil
}

// List возвращает всех родителей по возрастанию ID
func (r *ResourceRepo[P, C]) List(ctx context.Context) ([]P, error) {
	var parents []P
	if err := r.db.WithContext(ctx).Order("id").Find(&parents).Error; err != nil {
		return nil, err
	}
	return parents, nil
}

// ListChildren возвращает детей существующего родителя
func (r *ResourceRepo[P, C]) ListChildren(ctx context.Context, id uint) ([]C, error) {
	db := r.db.WithContext(ctx)
	if _, err := r.findParent(db, id); err != nil {
		return nil, err
	}
	return r.findChildren(db, id)
}

// Update обновляет поля родителя и заменяет детей (удалить всех, вставить новых)
func (r *ResourceRepo[P, C]) Update(ctx context.Context, id uint, record repository.Record[P, C]) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.findParent(tx, id); err != nil {
			return err
		}
		parent := record.Parent.WithID(id)
		if err := tx.Save(&parent).Error; err != nil {
			return err
		}
		if err := r.deleteChildren(tx, id); err != nil {
			return err
		}
		return r.insertChildren(tx, id, record.Children)
	})
}

// Delete удаляет детей (из-за внешнего ключа), затем родителя
func (r *ResourceRepo[P, C]) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.findParent(tx, id); err != nil {
			return err
		}
		if err := r.deleteChildren(tx, id); err != nil {
			return err
		}
		return tx.Delete(new(P), id).Error
	})
}

func (r *ResourceRepo[P, C]) findParent(db *gorm.DB, id uint) (P, error) {
	var parent P
	err := db.First(&parent, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return parent, apperrors.ErrNotFound
		}
		return parent, err
	}
	return parent, nil
}

func (r *ResourceRepo[P, C]) findChildren(db *gorm.DB, parentID uint) ([]C, error) {
	if !r.hasChildren() {
		return nil, nil
	}
	var children []C
	err := db.Where(r.parentKey+" = ?", parentID).Order("id").Find(&children).Error
	if err != nil {
		return nil, err
	}
	return children, nil
}

func (r *ResourceRepo[P, C]) insertChildren(tx *gorm.DB, parentID uint, children []C) error {
	if !r.hasChildren() || len(children) == 0 {
		return nil
	}
	rows := make([]C, len(children))
	for i, child := range children {
		rows[i] = child.WithID(0).WithParentID(parentID)
	}
	return tx.Create(&rows).Error
}

func (r *ResourceRepo[P, C]) deleteChildren(tx *gorm.DB, parentID uint) error {
	if !r.hasChildren() {
		return nil
	}
	return tx.Where(r.parentKey+" = ?", parentID).Delete(new(C)).Error
}
