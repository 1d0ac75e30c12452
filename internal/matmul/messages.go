package matmul

import "errors"

// CoordinatorRank is the rank that owns C and drives dispatch.
const CoordinatorRank = 0

var (
	// ErrProtocol reports a message that does not fit the task/result
	// protocol (wrong payload type, index out of range).
	ErrProtocol = errors.New("matmul: protocol violation")
	// ErrNoWorkers is returned when the group has no worker rank but there
	// is work to do.
	ErrNoWorkers = errors.New("matmul: process group has no workers")
)

// Task is a coordinator→worker message. It is either Work or Stop.
type Task interface {
	isTask()
}

// Work assigns the output cell at Index to a worker.
type Work struct {
	Index int
}

// Stop tells a worker that no more work will come.
type Stop struct{}

func (Work) isTask() {}
func (Stop) isTask() {}

// Result is a worker→coordinator message carrying one computed cell.
type Result struct {
	Index int
	Value float64
}
