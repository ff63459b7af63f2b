package events

import (
	"sync"
)

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not publish themselves.
type Handler func(Event)

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription struct {
	id      int
	handler Handler
}

// Bus delivers events to global, per type and per entity subscribers.
type Bus struct {
	mu       sync.RWMutex
	seq      uint64
	nextID   int
	global   []subscription
	byType   map[Type][]subscription
	byEntity map[EntityRef][]subscription
}

func NewBus() *Bus {
	return &Bus{
		byType:   make(map[Type][]subscription),
		byEntity: make(map[EntityRef][]subscription),
	}
}

// Subscribe registers a handler for every event.
func (b *Bus) Subscribe(h Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.add(&b.global, h)
	return b.unsubscribe(func() { b.global = remove(b.global, id) })
}

// SubscribeType registers a handler for events of one type.
func (b *Bus) SubscribeType(t Type, h Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.byType[t]
	id := b.add(&subs, h)
	b.byType[t] = subs
	return b.unsubscribe(func() { b.byType[t] = remove(b.byType[t], id) })
}

// SubscribeEntity registers a handler for events about one entity.
func (b *Bus) SubscribeEntity(ref EntityRef, h Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.byEntity[ref]
	id := b.add(&subs, h)
	b.byEntity[ref] = subs
	return b.unsubscribe(func() { b.byEntity[ref] = remove(b.byEntity[ref], id) })
}

// Publish assigns the next sequence number and delivers the event to global,
// then type, then entity subscribers.
func (b *Bus) Publish(t Type, ref EntityRef, payload interface{}) Event {
	b.mu.Lock()
	b.seq++
	event := Event{
		Seq:     b.seq,
		Type:    t,
		Entity:  ref,
		Payload: payload,
	}
	handlers := make([]Handler, 0, len(b.global)+len(b.byType[t])+len(b.byEntity[ref]))
	for _, group := range [][]subscription{b.global, b.byType[t], b.byEntity[ref]} {
		for _, s := range group {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	return event
}

// Sequence returns the sequence number of the last published event.
func (b *Bus) Sequence() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seq
}

func (b *Bus) add(subs *[]subscription, h Handler) int {
	b.nextID++
	*subs = append(*subs, subscription{id: b.nextID, handler: h})
	return b.nextID
}

func (b *Bus) unsubscribe(drop func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			drop()
		})
	}
}

func remove(subs []subscription, id int) []subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
