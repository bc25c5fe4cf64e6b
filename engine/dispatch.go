package engine

import (
	"sync"

	"github.com/karaokehub/songbot/transport"
)

// queueSize bounds how many events one chat may have waiting.
const queueSize = 32

// Dispatcher serializes events per chat: one worker per chat id drains its
// queue in arrival order, so a conversation never races with itself while
// different chats run concurrently. Workers live for the process lifetime.
type Dispatcher struct {
	engine *Engine

	mu     sync.Mutex
	queues map[int64]chan transport.Event
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(e *Engine) *Dispatcher {
	return &Dispatcher{
		engine: e,
		queues: make(map[int64]chan transport.Event),
	}
}

// Dispatch enqueues the event for its chat's worker, creating the worker on
// first contact. Returns false when the dispatcher is stopped or the chat's
// queue is full; the transport redelivers in that case.
func (d *Dispatcher) Dispatch(ev transport.Event) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	queue, ok := d.queues[ev.ChatID]
	if !ok {
		queue = make(chan transport.Event, queueSize)
		d.queues[ev.ChatID] = queue
		d.wg.Add(1)
		go d.worker(queue)
	}
	d.mu.Unlock()

	select {
	case queue <- ev:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) worker(queue chan transport.Event) {
	defer d.wg.Done()
	for ev := range queue {
		d.engine.Handle(ev)
	}
}

// Stop closes every queue and waits for in-flight events to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
