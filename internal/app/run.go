package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/mpmatmul/internal/cli"
	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
	"github.com/agbru/mpmatmul/internal/matmul"
	"github.com/agbru/mpmatmul/internal/matrix"
	"github.com/agbru/mpmatmul/internal/metrics"
	"github.com/agbru/mpmatmul/internal/orchestration"
	"github.com/agbru/mpmatmul/internal/server"
	"github.com/agbru/mpmatmul/internal/sysmon"
	"github.com/agbru/mpmatmul/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// runProduct orchestrates one distributed product from the parsed
// configuration.
func (a *Application) runProduct(ctx context.Context, out io.Writer) int {
	ops, err := a.operands()
	if err != nil {
		return cli.CLIResultPresenter{}.HandleError(err, 0, a.ErrWriter)
	}

	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	var observers []matmul.Observer
	if a.Config.MetricsAddr != "" {
		obs, stop, err := a.startMetricsServer(out)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer stop()
		observers = append(observers, obs)
	}

	if !a.Config.Quiet {
		fmt.Fprintf(out, "Multiplying %s%d×%d%s by %s%d×%d%s with %d workers\n",
			ui.ColorCyan(), ops.A.Rows, ops.A.Cols, ui.ColorReset(),
			ui.ColorCyan(), ops.B.Rows, ops.B.Cols, ui.ColorReset(),
			a.Config.Workers)
	}

	// Choose progress reporter based on quiet mode
	var progress orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progress = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	var sysBefore sysmon.Stats
	if a.Config.Verbose {
		sysBefore, _ = sysmon.Sample(ctx)
	}

	job := orchestration.Job{A: ops.A, B: ops.B, Workers: a.Config.Workers}
	result := orchestration.ExecuteProduct(ctx, job, orchestration.Options{
		Observers:   observers,
		Progress:    progress,
		ProgressOut: progressOut,
		Logger:      a.Logger,
	})

	exitCode := orchestration.AnalyzeResult(&result, a.Config, cli.CLIResultPresenter{}, out)
	if exitCode != apperrors.ExitSuccess {
		return exitCode
	}

	if a.Config.Verbose && !a.Config.Quiet {
		sysAfter, err := sysmon.Sample(context.Background())
		if err != nil {
			a.Logger.Debug("system statistics unavailable", logging.Err(err))
		} else {
			displaySystemStats(out, sysBefore, sysAfter)
		}
	}

	if a.Config.OutputFile != "" {
		if err := cli.WriteResultToFile(result, a.Config.OutputFile); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// operands loads A and B from the input file, or generates them from the
// configured shapes and seed. B uses the following seed so that square runs
// do not multiply a matrix by itself.
func (a *Application) operands() (matrix.Operands, error) {
	if a.Config.InputFile != "" {
		ops, err := matrix.Load(a.Config.InputFile)
		if err != nil {
			return matrix.Operands{}, err
		}
		a.Logger.Debug("operands loaded",
			logging.String("file", a.Config.InputFile),
			logging.Int("m", ops.A.Rows), logging.Int("n", ops.A.Cols), logging.Int("p", ops.B.Cols))
		return ops, nil
	}
	ma, err := matrix.Random(a.Config.M, a.Config.N, a.Config.Seed)
	if err != nil {
		return matrix.Operands{}, err
	}
	mb, err := matrix.Random(a.Config.N, a.Config.P, a.Config.Seed+1)
	if err != nil {
		return matrix.Operands{}, err
	}
	return matrix.Operands{A: ma, B: mb}, nil
}

// startMetricsServer exposes the dispatch and system collectors on
// MetricsAddr. The returned stop function shuts the server down.
func (a *Application) startMetricsServer(out io.Writer) (matmul.Observer, func(), error) {
	m := server.NewMetrics(metrics.NewSystemCollector(nil))
	dispatch, err := metrics.NewDispatchMetrics(m.Registry())
	if err != nil {
		return nil, nil, fmt.Errorf("registering metrics: %w", err)
	}
	srv := server.New(a.Config.MetricsAddr, m, a.Logger)
	if err := srv.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting metrics server: %w", err)
	}
	if !a.Config.Quiet {
		fmt.Fprintf(out, "Metrics: %shttp://%s/metrics%s\n", ui.ColorCyan(), srv.Addr(), ui.ColorReset())
	}
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown", err)
		}
	}
	return dispatch, stop, nil
}

func displaySystemStats(out io.Writer, before, after sysmon.Stats) {
	fmt.Fprintf(out, "\nSystem Stats:\n")
	// cpu.Percent with a zero interval measures since the previous sample,
	// so after covers the product itself.
	fmt.Fprintf(out, "  CPU:     %.1f%% during product\n", after.CPUPercent)
	fmt.Fprintf(out, "  Memory:  %.1f%% -> %.1f%% used\n", before.MemPercent, after.MemPercent)
}
