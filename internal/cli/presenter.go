package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/format"
	"github.com/agbru/mpmatmul/internal/matmul"
	"github.com/agbru/mpmatmul/internal/orchestration"
	"github.com/agbru/mpmatmul/internal/ui"
)

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// PresentSummary displays the run statistics as a two-column table.
func (p CLIResultPresenter) PresentSummary(result orchestration.ProductResult, out io.Writer) {
	a, b := result.Job.A, result.Job.B
	st := result.Stats
	verified := "skipped"
	if result.Verified {
		verified = "passed"
	}

	rows := [][]string{
		{"Operands", fmt.Sprintf("%d×%d · %d×%d", a.Rows, a.Cols, b.Rows, b.Cols)},
		{"Cells", format.FormatCount(st.Cells)},
		{"Workers", fmt.Sprintf("%d (+1 coordinator)", st.Workers)},
		{"Duration", p.FormatDuration(result.Duration)},
		{"Work messages", format.FormatCount(int(st.WorkMessages))},
		{"Result messages", format.FormatCount(int(st.ResultMessages))},
		{"Stop messages", format.FormatCount(int(st.StopMessages))},
		{"Verification", verified},
	}

	theme := ui.GetCurrentTableTheme()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("Run summary", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Foreground(theme.Header).Bold(true)
			case col == 0:
				return s.Foreground(theme.Index)
			default:
				return s.Foreground(theme.Cell)
			}
		})
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.String())
}

// PresentResult displays the product: plain rows in quiet mode, a table
// when requested, and memory statistics in verbose mode.
func (CLIResultPresenter) PresentResult(result orchestration.ProductResult, opts orchestration.PresentationOptions, out io.Writer) {
	if opts.Quiet {
		_ = DisplayQuietResult(out, result.C)
		return
	}
	if opts.ShowMatrix {
		fmt.Fprintln(out)
		DisplayMatrix(out, "C = A·B", result.C, opts.Verbose)
	}
	if opts.Verbose {
		DisplayMemoryStats(result, out)
	}
}

// FormatDuration formats a duration with the CLI's standard precision.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// HandleError reports a failed product and returns its exit code.
func (p CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	code := apperrors.ExitCodeFor(err)
	elapsed := p.FormatDuration(duration)

	var commErr apperrors.CommError
	switch code {
	case apperrors.ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Timeout.%s The product did not finish within the limit (ran %s).\n",
			ui.ColorYellow(), ui.ColorReset(), elapsed)
	case apperrors.ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s after %s.\n", ui.ColorYellow(), ui.ColorReset(), elapsed)
	case apperrors.ExitErrorConfig:
		fmt.Fprintf(out, "%sInvalid input:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
	default:
		switch {
		case errors.Is(err, matmul.ErrNoWorkers):
			fmt.Fprintf(out, "%sStatus: Failure.%s %v (use --workers 1 or more)\n", ui.ColorRed(), ui.ColorReset(), err)
		case errors.As(err, &commErr):
			fmt.Fprintf(out, "%sStatus: Failure.%s Message passing failed on rank %d during %s: %v\n",
				ui.ColorRed(), ui.ColorReset(), commErr.Rank, commErr.Op, commErr.Cause)
		default:
			fmt.Fprintf(out, "%sStatus: Failure.%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
		}
	}
	return code
}

// DisplayMemoryStats shows runtime memory statistics for the product.
func DisplayMemoryStats(result orchestration.ProductResult, out io.Writer) {
	mem := result.Memory
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(mem.Allocated))
	fmt.Fprintf(out, "  Heap growth:     %+d B\n", mem.HeapGrowth)
	fmt.Fprintf(out, "  GC cycles:       %d\n", mem.GCCycles)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(mem.GCPauseTotal)/float64(time.Millisecond))
}
