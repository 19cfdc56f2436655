package checklist

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu    sync.Mutex
	items map[uuid.UUID]Item
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{items: map[uuid.UUID]Item{}}
}

func (s *RepositoryStub) List(_ context.Context, list string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, 0)
	for _, item := range s.items {
		if item.List == list {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (s *RepositoryStub) Get(_ context.Context, list string, id uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.List != list {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (s *RepositoryStub) Create(_ context.Context, item Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.Id] = item
	return item, nil
}

func (s *RepositoryStub) Update(_ context.Context, item Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[item.Id]
	if !ok || existing.List != item.List {
		return false, nil
	}
	s.items[item.Id] = item
	return true, nil
}

func (s *RepositoryStub) Delete(_ context.Context, list string, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.List != list {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *RepositoryStub) MaxPosition(_ context.Context, list string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maxPosition := 0
	for _, item := range s.items {
		if item.List == list && item.Position > maxPosition {
			maxPosition = item.Position
		}
	}
	return maxPosition, nil
}
