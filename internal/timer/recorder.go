package timer

import (
	"context"
	"sync"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// ErrorHandler is called when the sink fails to record a session.
type ErrorHandler func(session domain.CompletedSession, err error)

// Recorder hands completed sessions to a sink in completion order on a
// single worker goroutine. Enqueue never blocks on the sink.
type Recorder struct {
	sink    domain.SessionSink
	log     *logger.Logger
	onError ErrorHandler

	mu      sync.Mutex
	queue   []domain.CompletedSession
	closed  bool
	pending int

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewRecorder creates a recorder and starts its worker.
func NewRecorder(sink domain.SessionSink, log *logger.Logger, onError ErrorHandler) *Recorder {
	r := &Recorder{
		sink:    sink,
		log:     log,
		onError: onError,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Enqueue appends a session to the FIFO. Returns false after Close.
func (r *Recorder) Enqueue(session domain.CompletedSession) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Warn("recorder closed, dropping session %s", session.ID)
		return false
	}
	r.queue = append(r.queue, session)
	r.pending++
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of sessions queued or being written.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Close stops accepting sessions and waits for the queue to drain or for
// ctx to end. A write already handed to the sink is never cancelled.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.stop)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for {
		r.drain()
		select {
		case <-r.wake:
		case <-r.stop:
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return
		}
		session := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		r.write(session)

		r.mu.Lock()
		r.pending--
		r.mu.Unlock()
	}
}

func (r *Recorder) write(session domain.CompletedSession) {
	r.log.Debug("recording %s session %s (%d min)", session.Mode, session.ID, session.DurationMinutes)
	if err := r.sink.Record(context.Background(), session); err != nil {
		r.log.Error("recording session %s: %v", session.ID, err)
		if r.onError != nil {
			r.onError(session, err)
		}
		return
	}
	r.log.Debug("recorded session %s", session.ID)
}
