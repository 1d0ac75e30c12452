package orchestration

import (
	"io"
	"time"

	"github.com/agbru/mpmatmul/internal/matmul"
	"github.com/agbru/mpmatmul/internal/matrix"
	"github.com/agbru/mpmatmul/internal/metrics"
)

// Job describes one product: C = A·B computed by Workers worker ranks.
type Job struct {
	A, B    *matrix.Dense
	Workers int
}

// ProductStats summarises the traffic of a product.
type ProductStats struct {
	Workers        int
	Cells          int
	WorkMessages   int64
	StopMessages   int64
	ResultMessages int64
}

// ProductResult is the outcome of ExecuteProduct. It is the shared domain
// type between orchestration and presentation.
type ProductResult struct {
	Job Job
	// C is the m×p product. It is nil if an error occurred.
	C        *matrix.Dense
	Duration time.Duration
	Stats    ProductStats
	Memory   metrics.MemoryDelta
	// Verified is set by AnalyzeResult once C matched the reference.
	Verified bool
	Err      error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	ShowMatrix bool
	Verbose    bool
	Quiet      bool
}

// ProgressReporter displays the progress of a running product. Track is
// called before the product starts; the returned observer is attached to
// the coordinator and stop is called once the product has ended, whatever
// its outcome.
type ProgressReporter interface {
	Track(out io.Writer) (observer matmul.Observer, stop func())
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(out io.Writer) (matmul.Observer, func())

// Track calls f.
func (f ProgressReporterFunc) Track(out io.Writer) (matmul.Observer, func()) {
	return f(out)
}

// NullProgressReporter displays nothing. Useful for quiet mode or testing.
type NullProgressReporter struct{}

// Track returns a no-op observer.
func (NullProgressReporter) Track(io.Writer) (matmul.Observer, func()) {
	return matmul.NoOpObserver{}, func() {}
}

// ResultPresenter renders a finished product. Implementations decide the
// output format; orchestration only decides what to present.
type ResultPresenter interface {
	// PresentSummary displays the run statistics.
	PresentSummary(result ProductResult, out io.Writer)

	// PresentResult displays the product itself.
	PresentResult(result ProductResult, opts PresentationOptions, out io.Writer)

	ErrorHandler
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a failed product and returns the exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
