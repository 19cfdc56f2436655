package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrSuperseded = errors.New("load superseded by a newer request")

// Store is the event list a view shows for its current range. Every Load cancels the one
// before it and a response is only applied if no newer load or mutation started since.
// The remote stays the source of truth: each successful mutation is followed by a reload.
type Store struct {
	service *Service

	mu         sync.Mutex
	events     []Event
	from       time.Time
	to         time.Time
	needsSetup bool
	seq        uint64
	cancel     context.CancelFunc
	reloadErr  error
}

func NewStore(service *Service) *Store {
	return &Store{service: service}
}

// Events returns a copy of the current list.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *Store) NeedsSetup() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsSetup
}

func (s *Store) Range() (time.Time, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.from, s.to
}

// begin cancels whatever load is in flight and returns the new sequence number.
func (s *Store) begin() uint64 {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	return s.seq
}

// ReloadErr is the error of the reload that followed the last mutation, if it failed.
// The mutation itself went through; the list may just be out of date.
func (s *Store) ReloadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadErr
}

// Load fetches [from, to) and replaces the list. It returns ErrSuperseded when a newer
// load or mutation started meanwhile; the list is then left to the newer call. A failed
// load keeps the previous list.
func (s *Store) Load(ctx context.Context, from, to time.Time) error {
	s.mu.Lock()
	seq := s.begin()
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.from, s.to = from, to
	s.mu.Unlock()
	defer cancel()

	events, err := s.service.Events(loadCtx, from, to)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		log.Tracef("discarding stale event list %d (current %d)", seq, s.seq)
		return ErrSuperseded
	}
	s.cancel = nil
	if errors.Is(err, ErrNeedsSetup) {
		s.events = nil
		s.needsSetup = true
		return nil
	}
	if err != nil {
		return err
	}
	s.events = events
	s.needsSetup = false
	return nil
}

// Reload fetches the current range again.
func (s *Store) Reload(ctx context.Context) error {
	from, to := s.Range()
	if from.IsZero() && to.IsZero() {
		return nil
	}
	return s.Load(ctx, from, to)
}

func (s *Store) Create(ctx context.Context, draft Draft) (Event, error) {
	event, err := s.service.CreateEvent(ctx, draft)
	if err != nil {
		return Event{}, err
	}
	s.reloadAfterMutation(ctx)
	return event, nil
}

// Update saves draft over e. Occurrences update their whole series.
func (s *Store) Update(ctx context.Context, e Event, draft Draft) (Event, error) {
	event, err := s.service.UpdateEvent(ctx, EditTarget(e), draft)
	if err != nil {
		return Event{}, err
	}
	s.reloadAfterMutation(ctx)
	return event, nil
}

// Delete removes what the request covers. The local list is filtered once the remote
// acknowledged the delete, so a failed call leaves it untouched.
func (s *Store) Delete(ctx context.Context, request DeletionRequest) error {
	if err := s.service.DeleteEvent(ctx, request); err != nil {
		return err
	}
	s.mu.Lock()
	s.begin()
	s.events = ApplyOptimisticDelete(s.events, request, s.service.Location())
	s.mu.Unlock()
	s.reloadAfterMutation(ctx)
	return nil
}

// reloadAfterMutation refreshes the list once the remote accepted a change. A failure here
// does not undo the change, so it is kept on the store instead of returned.
func (s *Store) reloadAfterMutation(ctx context.Context) {
	err := s.Reload(ctx)
	if errors.Is(err, ErrSuperseded) {
		err = nil
	}
	if err != nil {
		log.Warnf("event list reload after change failed: %v", err)
	}
	s.mu.Lock()
	s.reloadErr = err
	s.mu.Unlock()
}
