package checklist

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/homedash/homedash/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context, list string) ([]Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) (Item, error)
	Delete(ctx context.Context, list string, id uuid.UUID) (bool, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context, list string) ([]Item, error) {
	if err := ValidList(list); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, list)
}

func (s *ServiceImpl) Create(ctx context.Context, item Item) (Item, error) {
	if err := ValidList(item.List); err != nil {
		return Item{}, err
	}
	item.Title = strings.TrimSpace(item.Title)
	if err := item.validate(); err != nil {
		return Item{}, err
	}
	maxPosition, err := s.repo.MaxPosition(ctx, item.List)
	if err != nil {
		return Item{}, err
	}
	item.Id = uuid.New()
	item.Position = maxPosition + 1

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Item{}, err
	}
	s.changed(ctx, created)
	return created, nil
}

// Update replaces the item's fields. A zero Position keeps the stored one.
func (s *ServiceImpl) Update(ctx context.Context, item Item) (Item, error) {
	if err := ValidList(item.List); err != nil {
		return Item{}, err
	}
	item.Title = strings.TrimSpace(item.Title)
	if err := item.validate(); err != nil {
		return Item{}, err
	}
	if item.Position == 0 {
		existing, err := s.repo.Get(ctx, item.List, item.Id)
		if err != nil {
			return Item{}, err
		}
		item.Position = existing.Position
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return Item{}, err
	}
	if !updated {
		return Item{}, ErrItemNotFound
	}
	s.changed(ctx, item)
	return item, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, list string, id uuid.UUID) (bool, error) {
	if err := ValidList(list); err != nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, list, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.changed(ctx, Item{Id: id, List: list})
	return true, nil
}

// changed notifies subscribers of the item's list. The mutation is already
// persisted, so subscriber failures are only logged.
func (s *ServiceImpl) changed(ctx context.Context, item Item) {
	if s.eventBus == nil {
		return
	}
	if err := event_bus.PublishListChanged(ctx, s.eventBus, item.List, item.Id.String()); err != nil {
		log.Warnf("list %s change notification failed: %v", item.List, err)
	}
}
