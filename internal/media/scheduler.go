package media

import "sync"

const eventBufferSize = 64

// EventQueue is an ordered asynchronous event scheduler. A single
// dispatch goroutine drains a buffered channel, so listeners observe
// events in exactly the order they were scheduled. Delivery happens off
// the scheduling goroutine; Schedule never waits for listeners.
type EventQueue struct {
	ch   chan EventType
	quit chan struct{}
	done chan struct{}

	mu        sync.RWMutex
	listeners []func(EventType)
	closed    bool
}

// NewEventQueue creates a queue and starts its dispatch goroutine.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		ch:   make(chan EventType, eventBufferSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.dispatch()
	return q
}

// Listen registers a listener invoked for every event. Listeners run on
// the dispatch goroutine and must not block for long.
func (q *EventQueue) Listen(fn func(EventType)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// Schedule enqueues an event for delivery. Events scheduled after Close
// are dropped. No lock is held across the send, so a full buffer never
// wedges Close or the dispatch goroutine.
func (q *EventQueue) Schedule(t EventType) {
	select {
	case q.ch <- t:
	case <-q.quit:
	}
}

// Close stops dispatch after all already-scheduled events are delivered.
func (q *EventQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	close(q.quit)
	<-q.done
	return nil
}

func (q *EventQueue) dispatch() {
	defer close(q.done)
	for {
		select {
		case t := <-q.ch:
			q.deliver(t)
		case <-q.quit:
			// Drain events scheduled before Close.
			for {
				select {
				case t := <-q.ch:
					q.deliver(t)
				default:
					return
				}
			}
		}
	}
}

func (q *EventQueue) deliver(t EventType) {
	q.mu.RLock()
	listeners := q.listeners
	q.mu.RUnlock()
	for _, fn := range listeners {
		fn(t)
	}
}

// Verify EventQueue implements Scheduler at compile time.
var _ Scheduler = (*EventQueue)(nil)
