// Package bus dispatches agent messages to the engine. One worker goroutine
// per agent keeps a single agent's sequential requests in submission order
// while different agents proceed in parallel.
package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

const queueSize = 16

// ErrClosed is returned by Ask after Close.
var ErrClosed = errors.New("dispatcher closed")

// Handler processes one message and returns the reply text.
type Handler interface {
	HandleMessage(ctx context.Context, agentID int64, text string) string
}

type job struct {
	ctx   context.Context
	text  string
	reply chan string
}

// Dispatcher fans messages out to per-agent worker queues.
type Dispatcher struct {
	handler Handler
	logger  *slog.Logger

	// mu is held for reading across every queue send, so Close's write lock
	// cannot close a channel while a send is in flight.
	mu     sync.RWMutex
	queues map[int64]chan job
	closed bool
	wg     sync.WaitGroup
}

func New(handler Handler, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		logger:  logger,
		queues:  make(map[int64]chan job),
	}
}

// Ask submits a message for the agent and waits for the reply. Requests
// submitted sequentially for one agent are answered in submission order.
// A concurrent Close makes Ask return ErrClosed, never panic.
func (d *Dispatcher) Ask(ctx context.Context, agentID int64, text string) (string, error) {
	j := job{ctx: ctx, text: text, reply: make(chan string, 1)}
	if err := d.submit(ctx, agentID, j); err != nil {
		return "", err
	}

	select {
	case reply := <-j.reply:
		return reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// submit sends the job on the agent's queue while holding the read lock, so
// the queue cannot be closed mid-send.
func (d *Dispatcher) submit(ctx context.Context, agentID int64, j job) error {
	d.mu.RLock()
	q, ok := d.queues[agentID]
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	if !ok {
		d.mu.RUnlock()
		if err := d.spawn(agentID); err != nil {
			return err
		}
		d.mu.RLock()
		q = d.queues[agentID]
		if d.closed {
			d.mu.RUnlock()
			return ErrClosed
		}
	}
	defer d.mu.RUnlock()

	select {
	case q <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn creates the agent's queue and worker if they don't exist yet.
func (d *Dispatcher) spawn(agentID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.queues[agentID]; !ok {
		q := make(chan job, queueSize)
		d.queues[agentID] = q
		d.wg.Add(1)
		go d.worker(agentID, q)
	}
	return nil
}

func (d *Dispatcher) worker(agentID int64, q chan job) {
	defer d.wg.Done()
	for j := range q {
		reply := d.handler.HandleMessage(j.ctx, agentID, j.text)
		select {
		case j.reply <- reply:
		default:
			// Caller gave up; the exchange is still recorded by the engine.
			d.logger.Warn("reply dropped, caller gone", "agent_id", agentID)
		}
	}
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
