package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mpmatmul/internal/format"
	"github.com/agbru/mpmatmul/internal/matmul"
	"github.com/agbru/mpmatmul/internal/orchestration"
	"github.com/agbru/mpmatmul/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner frame interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner abstracts a terminal spinner so that progress display can be
// tested without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

// UpdateSuffix takes the spinner's lock because its animation goroutine
// reads Suffix concurrently.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, spinner.WithWriter(out))
	return &realSpinner{s}
}

// FormatExecutionDuration formats a duration for display.
func FormatExecutionDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// progressObserver drives a spinner from coordinator events.
type progressObserver struct {
	matmul.NoOpObserver
	mu       sync.Mutex
	spinner  Spinner
	progress *format.CellProgress
	workers  int
	inFlight int
}

func (po *progressObserver) Started(total, workers int) {
	po.mu.Lock()
	defer po.mu.Unlock()
	po.progress = format.NewCellProgress(total)
	po.workers = workers
	po.spinner.UpdateSuffix(po.suffix())
}

func (po *progressObserver) Dispatched(int, int) {
	po.mu.Lock()
	po.inFlight++
	po.mu.Unlock()
}

func (po *progressObserver) Received(int, int) {
	po.mu.Lock()
	defer po.mu.Unlock()
	po.inFlight--
	po.progress.Add(1)
	po.spinner.UpdateSuffix(po.suffix())
}

func (po *progressObserver) suffix() string {
	return fmt.Sprintf(" %s  %s/%s cells  %d/%d workers busy",
		format.FormatProgressBarWithETA(po.progress.Fraction(), po.progress.ETA(), ProgressBarWidth),
		format.FormatCount(po.progress.Done()), format.FormatCount(po.progress.Total()),
		po.inFlight, po.workers)
}

// CLIProgressReporter shows a spinner with a progress bar, the number of
// returned cells and an ETA while a product runs.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// Track starts the spinner on out. The returned stop function halts it and
// prints a completion line if the product finished.
func (CLIProgressReporter) Track(out io.Writer) (matmul.Observer, func()) {
	s := newSpinner(out)
	po := &progressObserver{spinner: s, progress: format.NewCellProgress(0)}
	s.Start()
	return po, func() {
		s.Stop()
		po.mu.Lock()
		defer po.mu.Unlock()
		if po.progress.Total() > 0 && po.progress.Done() == po.progress.Total() {
			fmt.Fprintf(out, "%s✓%s %s cells computed by %d workers\n",
				ui.ColorGreen(), ui.ColorReset(), format.FormatCount(po.progress.Total()), po.workers)
		}
	}
}
