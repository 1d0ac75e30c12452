package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/mpmatmul/internal/config"
	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
)

func newTestApp(t *testing.T, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	app, err := New(append([]string{"mpmatmul", "--no-color"}, args...), &errBuf, WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatalf("New(%v) error: %v\nstderr: %s", args, err, errBuf.String())
	}
	return app, &errBuf
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		app, _ := newTestApp(t)
		if app.Config.M != config.DefaultDimension || app.Config.P != config.DefaultDimension {
			t.Errorf("shape = %d×%d×%d", app.Config.M, app.Config.N, app.Config.P)
		}
		if app.Config.Workers < 1 {
			t.Errorf("Workers = %d, want a positive default", app.Config.Workers)
		}
	})

	t.Run("help", func(t *testing.T) {
		var errBuf bytes.Buffer
		_, err := New([]string{"mpmatmul", "--help"}, &errBuf)
		if !IsHelpError(err) {
			t.Fatalf("expected help error, got %v", err)
		}
		if !strings.Contains(errBuf.String(), "-workers") {
			t.Errorf("usage should list flags, got %q", errBuf.String())
		}
	})

	t.Run("config error is reported", func(t *testing.T) {
		var errBuf bytes.Buffer
		_, err := New([]string{"mpmatmul", "--workers", "-2"}, &errBuf)
		if err == nil || IsHelpError(err) {
			t.Fatalf("expected a config error, got %v", err)
		}
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("exit code = %d", apperrors.ExitCodeFor(err))
		}
		if !strings.Contains(errBuf.String(), "--workers") {
			t.Errorf("stderr = %q", errBuf.String())
		}
	})

	t.Run("empty args", func(t *testing.T) {
		var errBuf bytes.Buffer
		app, err := New(nil, &errBuf)
		if err != nil {
			t.Fatal(err)
		}
		if app.Config.Timeout != config.DefaultTimeout {
			t.Errorf("Timeout = %s", app.Config.Timeout)
		}
	})
}

func TestRun_QuietGenerated(t *testing.T) {
	app, _ := newTestApp(t, "-m", "3", "-n", "4", "-p", "2", "-w", "2", "--quiet")
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d rows, want 3:\n%s", len(lines), out.String())
	}
	for _, l := range lines {
		if n := len(strings.Fields(l)); n != 2 {
			t.Errorf("row %q has %d cells, want 2", l, n)
		}
	}
}

func TestRun_InputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ops.json")
	if err := os.WriteFile(in, []byte(`{"a": [[1, 2], [3, 4]], "b": [[5, 6], [7, 8]]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	outFile := filepath.Join(dir, "out", "c.txt")

	app, _ := newTestApp(t, "-i", in, "-o", outFile, "-w", "3", "-q")
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	if got, want := out.String(), "19 22\n43 50\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	content, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(content), "19 22\n43 50\n") || !strings.Contains(string(content), "# Verified: true") {
		t.Errorf("file content:\n%s", content)
	}
}

func TestRun_MissingInputFile(t *testing.T) {
	app, errBuf := newTestApp(t, "-i", filepath.Join(t.TempDir(), "missing.json"))
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(errBuf.String(), "cannot open input file") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRun_SummaryAndMetricsServer(t *testing.T) {
	app, _ := newTestApp(t, "-m", "5", "-n", "5", "-p", "5", "-w", "2", "-v", "--show", "--metrics-addr", "127.0.0.1:0")
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	s := out.String()
	for _, want := range []string{"Multiplying 5×5 by 5×5 with 2 workers", "Metrics: http://127.0.0.1:", "Run summary", "passed", "C = A·B (5×5)", "Memory Stats"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRun_Timeout(t *testing.T) {
	app, _ := newTestApp(t, "-m", "64", "-n", "64", "-p", "64", "-w", "2", "--timeout", "1ns", "-q")
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorTimeout, out.String())
	}
}

func TestRun_Canceled(t *testing.T) {
	app, _ := newTestApp(t, "-m", "64", "-n", "64", "-p", "64", "-w", "2", "-q")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if code := app.Run(ctx, &out); code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--version"}, true},
		{[]string{"-m", "3", "-V"}, true},
		{[]string{"-v"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.HasPrefix(buf.String(), "mpmatmul ") || !strings.Contains(buf.String(), "go:") {
		t.Errorf("PrintVersion = %q", buf.String())
	}
}
