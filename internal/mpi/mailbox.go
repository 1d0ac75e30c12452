package mpi

import (
	"context"
	"slices"
	"sync"
)

// mailbox is the receive queue of a single rank. Messages are matched in
// arrival order, which preserves per-sender ordering.
type mailbox struct {
	mu     sync.Mutex
	queue  []Envelope
	signal chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{})}
}

func (mb *mailbox) push(env Envelope) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return ErrClosed
	}
	mb.queue = append(mb.queue, env)
	close(mb.signal)
	mb.signal = make(chan struct{})
	return nil
}

// take removes and returns the oldest message matching source and tag.
// The returned channel is closed on the next push or on close, and is only
// set when no message matched.
func (mb *mailbox) take(source int, tag Tag) (Envelope, bool, <-chan struct{}, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i, env := range mb.queue {
		if env.Tag != tag || (source != AnySource && env.Source != source) {
			continue
		}
		mb.queue = slices.Delete(mb.queue, i, i+1)
		return env, true, nil, nil
	}
	if mb.closed {
		return Envelope{}, false, nil, ErrClosed
	}
	return Envelope{}, false, mb.signal, nil
}

func (mb *mailbox) wait(ctx context.Context, source int, tag Tag) (Envelope, error) {
	for {
		env, ok, changed, err := mb.take(source, tag)
		if err != nil {
			return Envelope{}, err
		}
		if ok {
			return env, nil
		}
		select {
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		case <-changed:
		}
	}
}

func (mb *mailbox) close() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return
	}
	mb.closed = true
	close(mb.signal)
}

func (mb *mailbox) pending() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.queue)
}
