package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/matmul"
	"github.com/agbru/mpmatmul/internal/orchestration"
	"github.com/agbru/mpmatmul/internal/ui"
)

func TestCLIResultPresenter_PresentSummary(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(ui.DarkTheme)

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentSummary(testResult(t), &buf)
	out := buf.String()
	for _, want := range []string{"Run summary", "2×2 · 2×2", "2 (+1 coordinator)", "3ms", "Stop messages", "passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestCLIResultPresenter_PresentResult(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(ui.DarkTheme)
	p := CLIResultPresenter{}

	tests := []struct {
		name     string
		opts     orchestration.PresentationOptions
		contains []string
		excludes []string
	}{
		{"quiet", orchestration.PresentationOptions{Quiet: true}, []string{"19 22\n"}, []string{"C = A·B", "Memory"}},
		{"show", orchestration.PresentationOptions{ShowMatrix: true}, []string{"C = A·B (2×2)"}, []string{"Memory"}},
		{"verbose", orchestration.PresentationOptions{Verbose: true}, []string{"Memory Stats", "GC cycles"}, []string{"C = A·B"}},
		{"default", orchestration.PresentationOptions{}, nil, []string{"C = A·B", "Memory"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p.PresentResult(testResult(t), tt.opts, &buf)
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestCLIResultPresenter_HandleError(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(ui.DarkTheme)

	tests := []struct {
		name     string
		err      error
		wantCode int
		contains string
	}{
		{"nil", nil, apperrors.ExitSuccess, ""},
		{"timeout", apperrors.CommError{Op: "test", Rank: 0, Cause: context.DeadlineExceeded}, apperrors.ExitErrorTimeout, "Timeout"},
		{"canceled", apperrors.CommError{Op: "recv", Rank: 2, Cause: context.Canceled}, apperrors.ExitErrorCanceled, "Canceled"},
		{"validation", apperrors.ValidationError{Field: "a", Message: "bad"}, apperrors.ExitErrorConfig, "Invalid input"},
		{"no workers", matmul.ErrNoWorkers, apperrors.ExitErrorGeneric, "--workers 1"},
		{"substrate", apperrors.CommError{Op: "send", Rank: 3, Cause: errors.New("closed")}, apperrors.ExitErrorGeneric, "rank 3 during send"},
		{"other", errors.New("boom"), apperrors.ExitErrorGeneric, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := CLIResultPresenter{}.HandleError(tt.err, 2*time.Second, &buf)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output %q missing %q", buf.String(), tt.contains)
			}
		})
	}
}

func TestCLIResultPresenter_FormatDuration(t *testing.T) {
	t.Parallel()
	p := CLIResultPresenter{}
	if got := p.FormatDuration(0); got != "< 1µs" {
		t.Errorf("FormatDuration(0) = %q", got)
	}
	if got := p.FormatDuration(2 * time.Second); got != "2s" {
		t.Errorf("FormatDuration(2s) = %q", got)
	}
}
