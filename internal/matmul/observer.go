package matmul

import "time"

// Observer receives coordinator events. All methods are called from the
// coordinator goroutine, in protocol order.
type Observer interface {
	// Started is called once before the first dispatch.
	Started(total, workers int)
	// Dispatched is called after Work(index) was sent to worker.
	Dispatched(worker, index int)
	// Received is called after the result for index from worker was stored.
	Received(worker, index int)
	// Stopped is called after Stop was sent to worker.
	Stopped(worker int)
	// Finished is called once the product is complete.
	Finished(elapsed time.Duration)
}

// NoOpObserver ignores every event. Embed it to implement a subset of
// Observer.
type NoOpObserver struct{}

func (NoOpObserver) Started(int, int)       {}
func (NoOpObserver) Dispatched(int, int)    {}
func (NoOpObserver) Received(int, int)      {}
func (NoOpObserver) Stopped(int)            {}
func (NoOpObserver) Finished(time.Duration) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) Started(total, workers int) {
	for _, o := range obs {
		o.Started(total, workers)
	}
}

func (obs Observers) Dispatched(worker, index int) {
	for _, o := range obs {
		o.Dispatched(worker, index)
	}
}

func (obs Observers) Received(worker, index int) {
	for _, o := range obs {
		o.Received(worker, index)
	}
}

func (obs Observers) Stopped(worker int) {
	for _, o := range obs {
		o.Stopped(worker)
	}
}

func (obs Observers) Finished(elapsed time.Duration) {
	for _, o := range obs {
		o.Finished(elapsed)
	}
}
