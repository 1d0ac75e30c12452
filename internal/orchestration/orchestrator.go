package orchestration

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/mpmatmul/internal/config"
	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
	"github.com/agbru/mpmatmul/internal/matmul"
	"github.com/agbru/mpmatmul/internal/matrix"
	"github.com/agbru/mpmatmul/internal/metrics"
	"github.com/agbru/mpmatmul/internal/mpi"
)

// Options configures ExecuteProduct. The zero value runs silently.
type Options struct {
	// Observers are attached to the coordinator in addition to the
	// progress observer.
	Observers []matmul.Observer
	Progress  ProgressReporter
	// ProgressOut receives progress output; nil discards it.
	ProgressOut io.Writer
	Logger      logging.Logger
	// Tracer overrides the global OpenTelemetry tracer.
	Tracer trace.Tracer
}

// ExecuteProduct computes job.A·job.B over a fresh group of job.Workers+1
// ranks. Every rank receives its own replica of both operands. The call
// returns once every rank has exited; failures are reported in the
// result's Err field.
func ExecuteProduct(ctx context.Context, job Job, opts Options) ProductResult {
	result := ProductResult{Job: job}
	if job.A == nil || job.B == nil {
		result.Err = apperrors.ValidationError{Field: "job", Message: "both operands are required"}
		return result
	}
	if job.A.Cols != job.B.Rows {
		result.Err = apperrors.ValidationError{
			Field:   "job",
			Message: fmt.Sprintf("cannot multiply %d×%d by %d×%d", job.A.Rows, job.A.Cols, job.B.Rows, job.B.Cols),
		}
		return result
	}
	if opts.Progress == nil {
		opts.Progress = NullProgressReporter{}
	}
	if opts.ProgressOut == nil {
		opts.ProgressOut = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	m, n, p := job.A.Rows, job.A.Cols, job.B.Cols
	result.Stats = ProductStats{Workers: job.Workers, Cells: m * p}

	var work, stops atomic.Int64
	world, err := mpi.NewWorld(job.Workers+1, mpi.WithTap(func(env mpi.Envelope) {
		switch env.Payload.(type) {
		case matmul.Work:
			work.Add(1)
		case matmul.Stop:
			stops.Add(1)
		}
	}))
	if err != nil {
		result.Err = apperrors.ValidationError{Field: "workers", Message: err.Error()}
		return result
	}
	defer world.Close()

	progressObserver, stopProgress := opts.Progress.Track(opts.ProgressOut)
	observers := append(matmul.Observers{progressObserver}, opts.Observers...)
	mulOpts := []matmul.Option{matmul.WithObserver(observers), matmul.WithLogger(opts.Logger)}
	if opts.Tracer != nil {
		mulOpts = append(mulOpts, matmul.WithTracer(opts.Tracer))
	}

	memory := metrics.NewMemoryCollector()
	before := memory.Snapshot()
	start := time.Now()

	var c []float64
	err = mpi.Run(ctx, world, func(ctx context.Context, comm mpi.Comm) error {
		out, err := matmul.Multiply(ctx, comm, slices.Clone(job.A.Data), m, n, slices.Clone(job.B.Data), p, mulOpts...)
		if comm.Rank() == matmul.CoordinatorRank {
			c = out
		}
		return err
	})

	result.Duration = time.Since(start)
	stopProgress()
	result.Memory = memory.Snapshot().Since(before)
	result.Stats.WorkMessages = work.Load()
	result.Stats.StopMessages = stops.Load()
	result.Stats.ResultMessages = world.Sent(mpi.TagResult)

	if err != nil {
		result.Err = err
		opts.Logger.Error("product failed", result.Err, logging.Int("workers", job.Workers))
		return result
	}
	result.C = &matrix.Dense{Rows: m, Cols: p, Data: c}
	return result
}

// AnalyzeResult checks a finished product and presents it.
//
// A failed product is handed to the presenter's error handler. When
// cfg.Verify is set, C is compared against matrix.Reference within
// cfg.Tolerance and a mismatch yields ExitErrorMismatch. Otherwise the
// summary and the result are presented and ExitSuccess is returned.
// result.Verified is set in place so later consumers see it.
func AnalyzeResult(result *ProductResult, cfg config.AppConfig, presenter ResultPresenter, out io.Writer) int {
	if result.Err != nil {
		return presenter.HandleError(result.Err, result.Duration, out)
	}

	if cfg.Verify {
		ref, err := matrix.Reference(result.Job.A, result.Job.B)
		if err != nil {
			return presenter.HandleError(err, result.Duration, out)
		}
		if err := matrix.Equal(result.C, ref, cfg.Tolerance); err != nil {
			fmt.Fprintf(out, "\nVerification: CRITICAL ERROR! The distributed product disagrees with the reference: %v\n", err)
			return apperrors.ExitErrorMismatch
		}
		result.Verified = true
	}

	opts := PresentationOptions{ShowMatrix: cfg.ShowMatrix, Verbose: cfg.Verbose, Quiet: cfg.Quiet}
	if !cfg.Quiet {
		presenter.PresentSummary(*result, out)
	}
	presenter.PresentResult(*result, opts, out)
	return apperrors.ExitSuccess
}
