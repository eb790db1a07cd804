// Package relay carries session notifications from the call lifecycle
// controller and the voice agent's tool calls to registered observers.
package relay

import (
	"fmt"
	"sync"

	"interview-screener/internal/domain/entities"
	"interview-screener/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const DefaultQueueSize = 64

type Handler func(entities.SessionEvent)

// Bus is an in-process publish/subscribe channel. Every subscription owns an
// ordered queue drained by its own goroutine, so Publish never waits on a
// slow observer. Events that do not fit in a full queue are dropped, and
// events still queued when a subscription ends are never delivered.
type Bus struct {
	logger    *logger.Logger
	queueSize int

	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
}

type subscription struct {
	callID  string
	handler Handler
	queue   chan entities.SessionEvent
	done    chan struct{}
}

func NewBus(logger *logger.Logger, queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		logger:    logger,
		queueSize: queueSize,
		subs:      make(map[uint64]*subscription),
	}
}

// Subscribe registers handler for events of callID. An empty callID
// receives every event. The returned function is idempotent.
func (b *Bus) Subscribe(callID string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || handler == nil {
		return func() {}
	}

	b.nextID++
	id := b.nextID
	sub := &subscription{
		callID:  callID,
		handler: handler,
		queue:   make(chan entities.SessionEvent, b.queueSize),
		done:    make(chan struct{}),
	}
	b.subs[id] = sub
	go b.deliver(sub)

	return func() { b.unsubscribe(id) }
}

// SubscribeAll registers handler for every event.
func (b *Bus) SubscribeAll(handler Handler) (unsubscribe func()) {
	return b.Subscribe("", handler)
}

// Publish hands event to every matching subscription without blocking.
func (b *Bus) Publish(event entities.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if sub.callID != "" && sub.callID != event.CallID {
			continue
		}
		select {
		case sub.queue <- event:
		default:
			b.logger.Warn("Dropping session event for slow subscriber", logrus.Fields{
				"type":   event.Type,
				"callId": event.CallID,
			})
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drops every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.done)
		delete(b.subs, id)
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.done)
}

func (b *Bus) deliver(sub *subscription) {
	for {
		select {
		case <-sub.done:
			return
		case event := <-sub.queue:
			select {
			case <-sub.done:
				return
			default:
			}
			b.invoke(sub.handler, event)
		}
	}
}

func (b *Bus) invoke(handler Handler, event entities.SessionEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(fmt.Sprintf("Recovered from panic in session event handler: %v", r), logrus.Fields{
				"type":   event.Type,
				"callId": event.CallID,
			})
		}
	}()
	handler(event)
}
