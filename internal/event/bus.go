package event

import "sync"

type Handler func(payload interface{})

const queueSize = 1024

// subscriber drains its queue on one goroutine, so it sees events in
// publish order.
type subscriber struct {
	queue   chan interface{}
	handler Handler
}

func (s *subscriber) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for payload := range s.queue {
		s.handler(payload)
	}
}

type Bus struct {
	handlers map[string][]*subscriber
	all      []*subscriber
	closed   bool
	wg       sync.WaitGroup
	mu       sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]*subscriber),
	}
}

func (b *Bus) add(handler Handler) *subscriber {
	s := &subscriber{queue: make(chan interface{}, queueSize), handler: handler}
	b.wg.Add(1)
	go s.run(&b.wg)
	return s
}

func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.handlers[event] = append(b.handlers[event], b.add(handler))
}

// SubscribeAll registers handler for every event name.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.all = append(b.all, b.add(handler))
}

// Publish queues payload for every matching subscriber. Each subscriber gets
// events in publish order; a full queue blocks the publisher.
func (b *Bus) Publish(event string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, s := range b.handlers[event] {
		s.queue <- payload
	}
	for _, s := range b.all {
		s.queue <- payload
	}
}

// Close stops accepting events and waits until every queued event has been
// handled.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, subs := range b.handlers {
		for _, s := range subs {
			close(s.queue)
		}
	}
	for _, s := range b.all {
		close(s.queue)
	}
	b.mu.Unlock()

	b.wg.Wait()
}
