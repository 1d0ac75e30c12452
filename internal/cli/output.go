// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayMatrix], [DisplayQuietResult].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatMatrix], [FormatExecutionDuration].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/mpmatmul/internal/matrix"
	"github.com/agbru/mpmatmul/internal/orchestration"
	"github.com/agbru/mpmatmul/internal/ui"
)

const (
	// TruncationLimit is the number of rows or columns from which a matrix
	// is elided in terminal output.
	TruncationLimit = 10
	// DisplayEdges is the number of leading and trailing rows or columns
	// kept when a matrix is elided.
	DisplayEdges = 4
	// cellPrecision is the number of significant digits shown per cell.
	cellPrecision = 6
)

const elided = -1

// visibleIndices returns the indices to display for a dimension of size n,
// with elided marking the gap.
func visibleIndices(n int, verbose bool) []int {
	if verbose || n <= TruncationLimit {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, 2*DisplayEdges+1)
	for i := 0; i < DisplayEdges; i++ {
		idx = append(idx, i)
	}
	idx = append(idx, elided)
	for i := n - DisplayEdges; i < n; i++ {
		idx = append(idx, i)
	}
	return idx
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', cellPrecision, 64)
}

// FormatMatrix renders d as a bordered table with row and column indices.
// Unless verbose is set, large matrices keep only their edges.
func FormatMatrix(d *matrix.Dense, verbose bool) string {
	rows := visibleIndices(d.Rows, verbose)
	cols := visibleIndices(d.Cols, verbose)

	headers := make([]string, 0, len(cols)+1)
	headers = append(headers, "")
	for _, j := range cols {
		if j == elided {
			headers = append(headers, "…")
		} else {
			headers = append(headers, strconv.Itoa(j))
		}
	}

	body := make([][]string, 0, len(rows))
	for _, i := range rows {
		line := make([]string, 0, len(cols)+1)
		if i == elided {
			line = append(line, "⋮")
			for range cols {
				line = append(line, "⋮")
			}
			body = append(body, line)
			continue
		}
		line = append(line, strconv.Itoa(i))
		for _, j := range cols {
			if j == elided {
				line = append(line, "…")
			} else {
				line = append(line, formatCell(d.At(i, j)))
			}
		}
		body = append(body, line)
	}

	theme := ui.GetCurrentTableTheme()
	base := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return base.Foreground(theme.Header).Bold(true).Align(lipgloss.Center)
			case col == 0:
				return base.Foreground(theme.Index).Align(lipgloss.Right)
			case body[row][col] == "…" || body[row][col] == "⋮":
				return base.Foreground(theme.Elided).Align(lipgloss.Center)
			default:
				return base.Foreground(theme.Cell).Align(lipgloss.Right)
			}
		})
	return t.String()
}

// DisplayMatrix writes the table form of d with a caption.
func DisplayMatrix(out io.Writer, name string, d *matrix.Dense, verbose bool) {
	fmt.Fprintf(out, "%s%s%s (%d×%d)\n", ui.ColorBold(), name, ui.ColorReset(), d.Rows, d.Cols)
	if d.Rows == 0 || d.Cols == 0 {
		fmt.Fprintln(out, "(empty)")
		return
	}
	fmt.Fprintln(out, FormatMatrix(d, verbose))
	if !verbose && (d.Rows > TruncationLimit || d.Cols > TruncationLimit) {
		fmt.Fprintf(out, "%s(truncated) Tip: use -v to print every cell or -o to save the product.%s\n",
			ui.ColorGrey(), ui.ColorReset())
	}
}

// writeRows writes one line per row, cells separated by spaces, at full
// precision.
func writeRows(w io.Writer, d *matrix.Dense) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < d.Rows; i++ {
		for j, v := range d.Row(i) {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// DisplayQuietResult prints the product rows only, suitable for scripting.
func DisplayQuietResult(out io.Writer, d *matrix.Dense) error {
	return writeRows(out, d)
}

// WriteResultToFile writes the product to path with a commented header.
// Parent directories are created as needed. An empty path is a no-op.
func WriteResultToFile(result orchestration.ProductResult, path string) error {
	if path == "" {
		return nil
	}
	if result.C == nil {
		return fmt.Errorf("no product to write")
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	a, b := result.Job.A, result.Job.B
	var hdr strings.Builder
	fmt.Fprintf(&hdr, "# Distributed matrix product\n")
	fmt.Fprintf(&hdr, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&hdr, "# Shape: %dx%d * %dx%d = %dx%d\n", a.Rows, a.Cols, b.Rows, b.Cols, result.C.Rows, result.C.Cols)
	fmt.Fprintf(&hdr, "# Workers: %d\n", result.Stats.Workers)
	fmt.Fprintf(&hdr, "# Duration: %s\n", result.Duration)
	fmt.Fprintf(&hdr, "# Verified: %t\n", result.Verified)
	if _, err := io.WriteString(file, hdr.String()); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := writeRows(file, result.C); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}
