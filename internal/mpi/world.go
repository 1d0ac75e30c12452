package mpi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// World is an in-process group of ranks connected by mailboxes.
type World struct {
	boxes  []*mailbox
	tap    func(Envelope)
	closed atomic.Bool

	mu   sync.Mutex
	sent map[Tag]int64
}

// Option configures a World.
type Option func(*World)

// WithTap registers fn to observe every message at send time, before it
// becomes visible to the receiver. fn is called from the sending goroutine
// and must be safe for concurrent use.
func WithTap(fn func(Envelope)) Option {
	return func(w *World) { w.tap = fn }
}

// NewWorld creates a group of size ranks.
func NewWorld(size int, opts ...Option) (*World, error) {
	if size < 1 {
		return nil, fmt.Errorf("mpi: group size must be at least 1, got %d", size)
	}
	w := &World{
		boxes: make([]*mailbox, size),
		sent:  make(map[Tag]int64),
	}
	for i := range w.boxes {
		w.boxes[i] = newMailbox()
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Size returns the number of ranks.
func (w *World) Size() int { return len(w.boxes) }

// Comm returns the handle of the given rank.
func (w *World) Comm(rank int) Comm {
	if rank < 0 || rank >= len(w.boxes) {
		panic(fmt.Sprintf("mpi: rank %d out of range [0, %d)", rank, len(w.boxes)))
	}
	return &comm{world: w, rank: rank}
}

// Close shuts the world down. Blocked receives return ErrClosed and further
// sends fail.
func (w *World) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	for _, mb := range w.boxes {
		mb.close()
	}
}

// Sent returns the number of messages sent on tag so far.
func (w *World) Sent(tag Tag) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sent[tag]
}

// Pending returns the number of undelivered messages queued for rank.
func (w *World) Pending(rank int) int {
	return w.boxes[rank].pending()
}

func (w *World) deliver(env Envelope) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if env.Dest < 0 || env.Dest >= len(w.boxes) {
		return fmt.Errorf("%w: destination %d, group size %d", ErrInvalidRank, env.Dest, len(w.boxes))
	}
	if w.tap != nil {
		w.tap(env)
	}
	if err := w.boxes[env.Dest].push(env); err != nil {
		return err
	}
	w.mu.Lock()
	w.sent[env.Tag]++
	w.mu.Unlock()
	return nil
}

type comm struct {
	world *World
	rank  int
}

func (c *comm) Rank() int { return c.rank }

func (c *comm) Size() int { return c.world.Size() }

func (c *comm) Send(ctx context.Context, dest int, tag Tag, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.world.deliver(Envelope{Source: c.rank, Dest: dest, Tag: tag, Payload: payload})
}

func (c *comm) Recv(ctx context.Context, source int, tag Tag) (any, Status, error) {
	if err := c.checkSource(source); err != nil {
		return nil, Status{}, err
	}
	env, err := c.world.boxes[c.rank].wait(ctx, source, tag)
	if err != nil {
		return nil, Status{}, err
	}
	return env.Payload, Status{Source: env.Source, Tag: env.Tag}, nil
}

func (c *comm) Irecv(source int, tag Tag) Request {
	return &request{box: c.world.boxes[c.rank], source: source, tag: tag, err: c.checkSource(source)}
}

func (c *comm) checkSource(source int) error {
	if source == AnySource || (source >= 0 && source < c.world.Size()) {
		return nil
	}
	return fmt.Errorf("%w: source %d, group size %d", ErrInvalidRank, source, c.world.Size())
}

// request is a posted receive. It only touches the mailbox when tested, so
// an abandoned request cannot swallow a message.
type request struct {
	box      *mailbox
	source   int
	tag      Tag
	err      error
	inactive bool
}

func (r *request) Test() (any, Status, bool, error) {
	if r.err != nil {
		return nil, Status{}, false, r.err
	}
	if r.inactive {
		return nil, Status{}, false, ErrInactiveRequest
	}
	env, ok, _, err := r.box.take(r.source, r.tag)
	if err != nil {
		return nil, Status{}, false, err
	}
	if !ok {
		return nil, Status{}, false, nil
	}
	r.inactive = true
	return env.Payload, Status{Source: env.Source, Tag: env.Tag}, true, nil
}

func (r *request) Cancel() { r.inactive = true }
