package matmul

import (
	"context"
	"fmt"
	"runtime"
	"time"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
	"github.com/agbru/mpmatmul/internal/mpi"
)

// coordinator holds the state of one product on rank 0. It lives for a
// single Multiply call.
type coordinator struct {
	comm     mpi.Comm
	total    int
	next     int
	returned int
	c        []float64
	observer Observer
	logger   logging.Logger
}

func newCoordinator(comm mpi.Comm, m, p int, o options) *coordinator {
	total := m * p
	return &coordinator{
		comm:     comm,
		total:    total,
		c:        make([]float64, total),
		observer: o.observer,
		logger:   o.logger,
	}
}

// run drives the dispatch loop until every cell has been returned, then
// stops the workers and hands back C.
func (co *coordinator) run(ctx context.Context) ([]float64, error) {
	workers := co.comm.Size() - 1
	if workers < 1 && co.total > 0 {
		return nil, ErrNoWorkers
	}

	start := time.Now()
	co.observer.Started(co.total, workers)
	co.logger.Debug("product started", logging.Int("cells", co.total), logging.Int("workers", workers))

	primed := false
	for {
		req := co.comm.Irecv(mpi.AnySource, mpi.TagResult)

		if !primed {
			primed = true
			for w := 1; w <= workers; w++ {
				if err := co.dispatch(ctx, w); err != nil {
					req.Cancel()
					return nil, err
				}
			}
		}

		if co.returned >= co.total {
			req.Cancel()
			if err := co.stopAll(ctx, workers); err != nil {
				return nil, err
			}
			elapsed := time.Since(start)
			co.observer.Finished(elapsed)
			co.logger.Debug("product complete", logging.Int("cells", co.total), logging.String("elapsed", elapsed.String()))
			return co.c, nil
		}

		payload, st, err := co.await(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := co.store(payload, st.Source); err != nil {
			return nil, err
		}
		if err := co.dispatch(ctx, st.Source); err != nil {
			return nil, err
		}
	}
}

// await polls req until it completes. The loop yields between tests so that
// worker goroutines sharing the processor make progress.
func (co *coordinator) await(ctx context.Context, req mpi.Request) (any, mpi.Status, error) {
	for {
		payload, st, done, err := req.Test()
		if err != nil {
			return nil, mpi.Status{}, co.commError("test", err)
		}
		if done {
			return payload, st, nil
		}
		if err := ctx.Err(); err != nil {
			req.Cancel()
			return nil, mpi.Status{}, co.commError("test", err)
		}
		runtime.Gosched()
	}
}

func (co *coordinator) store(payload any, source int) error {
	res, ok := payload.(Result)
	if !ok {
		return fmt.Errorf("%w: rank %d sent %T on the result channel", ErrProtocol, source, payload)
	}
	if res.Index < 0 || res.Index >= co.total {
		return fmt.Errorf("%w: rank %d returned index %d outside [0, %d)", ErrProtocol, source, res.Index, co.total)
	}
	co.c[res.Index] = res.Value
	co.returned++
	co.observer.Received(source, res.Index)
	return nil
}

// dispatch sends the next undispatched index to worker, if any remain.
func (co *coordinator) dispatch(ctx context.Context, worker int) error {
	if co.next >= co.total {
		return nil
	}
	if err := co.comm.Send(ctx, worker, mpi.TagTask, Work{Index: co.next}); err != nil {
		return co.commError("send", err)
	}
	co.observer.Dispatched(worker, co.next)
	co.logger.Debug("task dispatched", logging.Int("worker", worker), logging.Int("index", co.next))
	co.next++
	return nil
}

func (co *coordinator) stopAll(ctx context.Context, workers int) error {
	for w := 1; w <= workers; w++ {
		if err := co.comm.Send(ctx, w, mpi.TagTask, Stop{}); err != nil {
			return co.commError("send", err)
		}
		co.observer.Stopped(w)
	}
	return nil
}

func (co *coordinator) commError(op string, err error) error {
	return apperrors.CommError{Op: op, Rank: co.comm.Rank(), Cause: err}
}
