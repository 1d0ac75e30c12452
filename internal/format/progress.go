package format

import (
	"fmt"
	"strings"
	"time"
)

const (
	// rateSmoothing is the weight of the newest rate sample.
	rateSmoothing = 0.3
	// minRateInterval keeps bursts of results from skewing the rate.
	minRateInterval = 50 * time.Millisecond
	maxETA          = 24 * time.Hour
)

// CellProgress tracks how many cells of a product have been returned and
// estimates the time remaining from a smoothed completion rate. It is not
// safe for concurrent use.
type CellProgress struct {
	total      int
	done       int
	rate       float64 // cells per second
	lastUpdate time.Time
	lastDone   int
	now        func() time.Time
}

// NewCellProgress starts tracking a product of total cells.
func NewCellProgress(total int) *CellProgress {
	return newCellProgress(total, time.Now)
}

func newCellProgress(total int, now func() time.Time) *CellProgress {
	return &CellProgress{total: max(total, 0), lastUpdate: now(), now: now}
}

// Add records n more returned cells and returns the completed fraction and
// the current ETA. Counts beyond the total are clamped.
func (p *CellProgress) Add(n int) (float64, time.Duration) {
	p.done = min(max(p.done+n, 0), p.total)

	now := p.now()
	if dt := now.Sub(p.lastUpdate); dt >= minRateInterval {
		inst := float64(p.done-p.lastDone) / dt.Seconds()
		if p.rate == 0 {
			p.rate = inst
		} else {
			p.rate = rateSmoothing*inst + (1-rateSmoothing)*p.rate
		}
		p.lastUpdate, p.lastDone = now, p.done
	}
	return p.Fraction(), p.ETA()
}

// Fraction returns the completed share in [0, 1]. An empty product is
// complete from the start.
func (p *CellProgress) Fraction() float64 {
	if p.total == 0 {
		return 1
	}
	return float64(p.done) / float64(p.total)
}

// ETA returns the estimated time remaining, or 0 while no rate is known.
func (p *CellProgress) ETA() time.Duration {
	remaining := p.total - p.done
	if remaining <= 0 || p.rate <= 0 {
		return 0
	}
	secs := float64(remaining) / p.rate
	if secs >= maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

func (p *CellProgress) Done() int  { return p.done }
func (p *CellProgress) Total() int { return p.total }

// ProgressBar renders a bar of the given width for progress in [0, 1].
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}

// FormatProgressBarWithETA combines bar, percentage and ETA on one line.
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", min(max(progress, 0), 1)*100, ProgressBar(progress, width), FormatETA(eta))
}
