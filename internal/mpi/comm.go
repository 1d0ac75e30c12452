//go:generate mockgen -source=comm.go -destination=mocks/mock_comm.go -package=mocks

package mpi

import (
	"context"
	"errors"
	"fmt"
)

// AnySource matches a message from any sender.
const AnySource = -1

// Tag is the logical channel a message travels on.
type Tag int

const (
	// TagTask carries coordinator→worker assignments.
	TagTask Tag = iota + 1
	// TagResult carries worker→coordinator results.
	TagResult
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagTask:
		return "task"
	case TagResult:
		return "result"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

var (
	// ErrClosed is returned by operations on a world that has been closed.
	ErrClosed = errors.New("mpi: world closed")
	// ErrInvalidRank is returned when a rank is outside [0, size).
	ErrInvalidRank = errors.New("mpi: invalid rank")
	// ErrInactiveRequest is returned when testing a request that already
	// completed or was canceled.
	ErrInactiveRequest = errors.New("mpi: inactive request")
)

// Status describes a matched message.
type Status struct {
	Source int
	Tag    Tag
}

// Envelope is a message in transit.
type Envelope struct {
	Source  int
	Dest    int
	Tag     Tag
	Payload any
}

// Comm is one rank's handle on the process group.
type Comm interface {
	// Rank returns the caller's rank in [0, Size()).
	Rank() int
	// Size returns the number of ranks in the group.
	Size() int
	// Send delivers payload to dest on tag. It does not wait for a matching
	// receive.
	Send(ctx context.Context, dest int, tag Tag, payload any) error
	// Recv blocks until a message from source (or AnySource) on tag arrives.
	Recv(ctx context.Context, source int, tag Tag) (any, Status, error)
	// Irecv posts a non-blocking receive. The returned Request must be
	// polled with Test until it completes, or canceled.
	Irecv(source int, tag Tag) Request
}

// Request is a pending non-blocking receive.
type Request interface {
	// Test attempts to complete the receive without blocking. done reports
	// whether a message was matched; payload and status are only meaningful
	// when done is true.
	Test() (payload any, status Status, done bool, err error)
	// Cancel withdraws the request. A canceled request never consumes a
	// message.
	Cancel()
}
