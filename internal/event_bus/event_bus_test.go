package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_RunsHandlersInOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	bus.Subscribe("t", func(Event) error { calls = append(calls, "first"); return nil })
	bus.Subscribe("t", func(Event) error { calls = append(calls, "second"); return nil })
	bus.Subscribe("t", func(Event) error { calls = append(calls, "third"); return nil })

	require.NoError(t, bus.Publish(NewEvent(context.Background(), "t", nil)))

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestPublish_CollectsErrorsAndPanics(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	reached := false
	bus.Subscribe("t", func(Event) error { return boom })
	bus.Subscribe("t", func(Event) error { panic("nope") })
	bus.Subscribe("t", func(Event) error { reached = true; return nil })

	err := bus.Publish(NewEvent(context.Background(), "t", nil))

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "2 handler(s) failed")
	assert.True(t, reached)
}

func TestPublish_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe("t", func(Event) error { called = true; return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, "t", nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	count := 0
	unsub := bus.Subscribe("t", func(Event) error { count++; return nil })

	require.NoError(t, bus.Publish(NewEvent(context.Background(), "t", nil)))
	unsub()
	unsub()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), "t", nil)))

	assert.Equal(t, 1, count)
}

func TestSubscribeList_IsScopedToListKey(t *testing.T) {
	bus := NewEventBus()
	var seen []ListChanged
	unsub := SubscribeList(bus, func(e EventT[ListChanged]) error {
		seen = append(seen, e.Data)
		return nil
	}, "todos", "chores")

	require.NoError(t, PublishListChanged(context.Background(), bus, "todos", "a"))
	require.NoError(t, PublishListChanged(context.Background(), bus, "groceries", "b"))
	require.NoError(t, PublishListChanged(context.Background(), bus, "chores", "c"))
	unsub()
	require.NoError(t, PublishListChanged(context.Background(), bus, "todos", "d"))

	assert.Equal(t, []ListChanged{{List: "todos", ItemId: "a"}, {List: "chores", ItemId: "c"}}, seen)
}

func TestSubscribeTyped_SkipsOtherPayloads(t *testing.T) {
	bus := NewEventBus()
	called := false
	SubscribeTyped(bus, ListChangedType("todos"), func(EventT[ListChanged]) error { called = true; return nil })

	require.NoError(t, bus.Publish(NewEvent(context.Background(), ListChangedType("todos"), "not a ListChanged")))

	assert.False(t, called)
}
