package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mpmatmul/internal/ui"
)

// MockSpinner for testing
type MockSpinner struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	suffixes []string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	m.suffixes = append(m.suffixes, suffix)
	m.mu.Unlock()
}

func (m *MockSpinner) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.suffixes) == 0 {
		return ""
	}
	return m.suffixes[len(m.suffixes)-1]
}

func useMockSpinner(t *testing.T) *MockSpinner {
	t.Helper()
	original := newSpinner
	t.Cleanup(func() { newSpinner = original })
	mockS := &MockSpinner{}
	newSpinner = func(io.Writer) Spinner { return mockS }
	return mockS
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	// Just verify these methods don't panic
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("Suffix = %q", s.Suffix)
	}
}

func TestCLIProgressReporter_Track(t *testing.T) {
	mockS := useMockSpinner(t)
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(ui.DarkTheme)

	var out bytes.Buffer
	obs, stop := CLIProgressReporter{}.Track(&out)

	obs.Started(4, 2)
	obs.Dispatched(1, 0)
	obs.Dispatched(2, 1)
	if got := mockS.last(); !strings.Contains(got, "0/4 cells") || !strings.Contains(got, "/2 workers") {
		t.Errorf("suffix after start = %q", got)
	}
	obs.Received(1, 0)
	if got := mockS.last(); !strings.Contains(got, "1/4 cells") || !strings.Contains(got, "1/2 workers busy") {
		t.Errorf("suffix after first result = %q", got)
	}
	obs.Dispatched(1, 2)
	obs.Received(2, 1)
	obs.Dispatched(2, 3)
	obs.Received(1, 2)
	obs.Received(2, 3)
	if got := mockS.last(); !strings.Contains(got, "100.00%") || !strings.Contains(got, "4/4 cells") {
		t.Errorf("suffix when complete = %q", got)
	}

	stop()
	if !mockS.started || !mockS.stopped {
		t.Errorf("started = %v, stopped = %v", mockS.started, mockS.stopped)
	}
	if !strings.Contains(out.String(), "✓ 4 cells computed by 2 workers") {
		t.Errorf("completion line missing: %q", out.String())
	}
}

func TestCLIProgressReporter_IncompleteRun(t *testing.T) {
	mockS := useMockSpinner(t)

	var out bytes.Buffer
	obs, stop := CLIProgressReporter{}.Track(&out)
	obs.Started(10, 3)
	obs.Dispatched(1, 0)
	stop()

	if !mockS.stopped {
		t.Error("spinner should stop on an aborted product")
	}
	if out.Len() != 0 {
		t.Errorf("no completion line expected, got %q", out.String())
	}
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	if got := FormatExecutionDuration(1500 * time.Microsecond); got != "1ms" {
		t.Errorf("FormatExecutionDuration = %q, want 1ms", got)
	}
}
