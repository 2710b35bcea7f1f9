package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// ResourceService предоставляет CRUD-операции над ресурсом поверх хранилища
type ResourceService[P entity.Entity[P], C entity.ChildEntity[C]] struct {
	repo repository.ResourceRepository[P, C]
	name string
	log  *logrus.Entry
}

// NewResourceService создает сервис ресурса. name используется в логах ("question", "book").
func NewResourceService[P entity.Entity[P], C entity.ChildEntity[C]](
	repo repository.ResourceRepository[P, C],
	name string,
	log *logrus.Logger,
) *ResourceService[P, C] {
	return &ResourceService[P, C]{
		repo: repo,
		name: name,
		log:  log.WithFields(logrus.Fields{"component": "resource_service", "resource": name}),
	}
}

// Create сохраняет новую запись и возвращает её ID
func (s *ResourceService[P, C]) Create(ctx context.Context, parent P, children []C) (uint, error) {
	id, err := s.repo.Create(ctx, repository.Record[P, C]{Parent: parent, Children: children})
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", s.name, err)
	}
	s.log.WithFields(logrus.Fields{"id": id, "children": len(children)}).Info("created")
	return id, nil
}

// Get возвращает запись вместе с дочерними сущностями
func (s *ResourceService[P, C]) Get(ctx context.Context, id uint) (*repository.Record[P, C], error) {
	return s.repo.GetByID(ctx, id)
}

// List возвращает все записи без дочерних сущностей
func (s *ResourceService[P, C]) List(ctx context.Context) ([]P, error) {
	return s.repo.List(ctx)
}

// ListChildren возвращает дочерние сущности записи
func (s *ResourceService[P, C]) ListChildren(ctx context.Context, id uint) ([]C, error) {
	return s.repo.ListChildren(ctx, id)
}

// Update полностью заменяет запись и её дочерние сущности
func (s *ResourceService[P, C]) Update(ctx context.Context, id uint, parent P, children []C) error {
	if err := s.repo.Update(ctx, id, repository.Record[P, C]{Parent: parent, Children: children}); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"id": id, "children": len(children)}).Info("updated")
	return nil
}

// Delete удаляет запись вместе с дочерними сущностями
func (s *ResourceService[P, C]) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("id", id).Info("deleted")
	return nil
}

// Seed добавляет стартовые записи, если хранилище пусто. Возвращает количество добавленных.
func (s *ResourceService[P, C]) Seed(ctx context.Context, parents []P) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s before seeding: %w", s.name, err)
	}
	if len(existing) > 0 {
		s.log.WithField("existing", len(existing)).Debug("seed skipped: storage is not empty")
		return 0, nil
	}

	for _, p := range parents {
		if _, err := s.repo.Create(ctx, repository.Record[P, C]{Parent: p}); err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", s.name, err)
		}
	}
	s.log.WithField("count", len(parents)).Info("seeded")
	return len(parents), nil
}
