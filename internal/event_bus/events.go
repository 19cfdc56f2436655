package event_bus

import "context"

const listChangedPrefix = "list.changed."

// ListChanged is published after any mutation of a persisted list.
type ListChanged struct {
	List   string
	ItemId string
}

// ListChangedType scopes change notifications to a single list identifier.
func ListChangedType(list string) EventType {
	return EventType(listChangedPrefix + list)
}

// PublishListChanged notifies the subscribers of one list.
func PublishListChanged(ctx context.Context, eb *EventBus, list, itemId string) error {
	return eb.Publish(NewEvent(ctx, ListChangedType(list), ListChanged{List: list, ItemId: itemId}))
}

// SubscribeList subscribes h to changes of the given lists.
func SubscribeList(eb *EventBus, h func(EventT[ListChanged]) error, lists ...string) (unsubscribe func()) {
	unsubs := make([]func(), 0, len(lists))
	for _, list := range lists {
		unsubs = append(unsubs, SubscribeTyped(eb, ListChangedType(list), h))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
