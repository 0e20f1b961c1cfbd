package session

import "sync"

// Topic identifies a class of notification on the bus. Topics mirror the
// events the web storefront broadcast between components: cart and wishlist
// changes, login, logout, and external storage changes (the cross-process
// analog of the browser's storage event).
type Topic string

const (
	TopicCartUpdated     Topic = "cart.updated"
	TopicWishlistUpdated Topic = "wishlist.updated"
	TopicLogin           Topic = "login.success"
	TopicLogout          Topic = "logout"
	TopicStorageChanged  Topic = "storage.changed"
)

// Event is a bus notification. Key is set only for storage-changed events and
// names the store key that changed.
type Event struct {
	Topic Topic
	Key   string
}

// Bus is a typed in-process publish/subscribe bus. It replaces the untyped
// process-global events the web client used: one shared source of truth,
// explicitly owned and injected, with typed payloads.
//
// Delivery is synchronous and in subscription order. Handlers must not block;
// anything slow (a reconciling re-fetch in particular) should be scheduled,
// not executed inline.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]func(Event))}
}

// Subscribe registers fn for a topic and returns an unsubscribe func.
// Unsubscribing twice is a no-op.
func (b *Bus) Subscribe(topic Topic, fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func(Event))
	}
	b.subs[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers the event to every subscriber of its topic. The handler
// set is snapshotted first, so handlers may subscribe or unsubscribe freely.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs[e.Topic]))
	for _, fn := range b.subs[e.Topic] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}
