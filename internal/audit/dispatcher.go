package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events instead of blocking the request when the
	// queue is full.
	DropIfFull bool
	// Now stamps events that arrive without a timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher moves account and session events off the request path and hands
// them to a Sink in arrival order. A nil *Dispatcher discards everything, so
// the engine can call it unconditionally when auditing is off.
type Dispatcher struct {
	sink  Sink
	queue chan Event
	block bool
	now   func() time.Time

	stop    context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	closing atomic.Bool
	dropped atomic.Uint64
}

// NewDispatcher starts the forwarding goroutine. It returns nil when cfg.Enabled is false.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	stop, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, size),
		block:   !cfg.DropIfFull,
		now:     now,
		stop:    stop,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go d.forward()
	return d
}

func (d *Dispatcher) forward() {
	defer close(d.stopped)
	for {
		select {
		case ev := <-d.queue:
			d.sink.Emit(context.Background(), ev)
		case <-d.stop.Done():
			d.flush()
			return
		}
	}
}

// flush hands whatever is still queued to the sink.
func (d *Dispatcher) flush() {
	for {
		select {
		case ev := <-d.queue:
			d.sink.Emit(context.Background(), ev)
		default:
			return
		}
	}
}

// Emit queues event. Events without an ID or timestamp get one here so every
// sink sees the same values. After Close it is a no-op.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closing.Load() {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	if !d.block {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	var caller <-chan struct{}
	if ctx != nil {
		caller = ctx.Done()
	}
	select {
	case d.queue <- event:
	case <-caller:
	case <-d.stop.Done():
	}
}

// Close stops accepting events, flushes the queue and waits for the sink.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	if d.closing.CompareAndSwap(false, true) {
		d.cancel()
	}
	<-d.stopped
}

// Dropped counts events discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
