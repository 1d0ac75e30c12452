package matmul

import (
	"context"
	"fmt"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
	"github.com/agbru/mpmatmul/internal/mpi"
)

// worker answers Work messages with dot products until it receives Stop.
type worker struct {
	comm   mpi.Comm
	a, b   []float64
	n, p   int
	total  int
	logger logging.Logger
}

func (wk *worker) run(ctx context.Context) error {
	rank := wk.comm.Rank()
	computed := 0
	for {
		payload, _, err := wk.comm.Recv(ctx, CoordinatorRank, mpi.TagTask)
		if err != nil {
			return apperrors.CommError{Op: "recv", Rank: rank, Cause: err}
		}

		switch task := payload.(type) {
		case Stop:
			wk.logger.Debug("worker stopped", logging.Int("rank", rank), logging.Int("computed", computed))
			return nil
		case Work:
			if task.Index < 0 || task.Index >= wk.total {
				return fmt.Errorf("%w: rank %d assigned index %d outside [0, %d)", ErrProtocol, rank, task.Index, wk.total)
			}
			res := Result{Index: task.Index, Value: Dot(wk.a, wk.b, wk.n, wk.p, task.Index)}
			if err := wk.comm.Send(ctx, CoordinatorRank, mpi.TagResult, res); err != nil {
				return apperrors.CommError{Op: "send", Rank: rank, Cause: err}
			}
			computed++
		default:
			return fmt.Errorf("%w: rank %d received %T on the task channel", ErrProtocol, rank, payload)
		}
	}
}
