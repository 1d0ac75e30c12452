package matmul

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/mpi"
)

// Multiply computes C = A·B where A is m×n and B is n×p, both row-major.
//
// Every rank of the group calls Multiply with its own replica of A and B.
// On the coordinator rank it returns the m×p product once all cells are in;
// on worker ranks it returns nil, nil after the coordinator stops them.
// Substrate failures are returned as apperrors.CommError and are fatal.
func Multiply(ctx context.Context, comm mpi.Comm, a []float64, m, n int, b []float64, p int, opts ...Option) ([]float64, error) {
	if err := validate(a, m, n, b, p); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	ctx, span := o.tracer.Start(ctx, "matmul.Multiply", trace.WithAttributes(
		attribute.Int("matmul.m", m),
		attribute.Int("matmul.n", n),
		attribute.Int("matmul.p", p),
		attribute.Int("mpi.rank", comm.Rank()),
		attribute.Int("mpi.size", comm.Size()),
	))
	defer span.End()

	var (
		c   []float64
		err error
	)
	if comm.Rank() == CoordinatorRank {
		c, err = newCoordinator(comm, m, p, o).run(ctx)
	} else {
		wk := &worker{comm: comm, a: a, b: b, n: n, p: p, total: m * p, logger: o.logger}
		err = wk.run(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return c, nil
}

func validate(a []float64, m, n int, b []float64, p int) error {
	switch {
	case m < 0:
		return apperrors.ValidationError{Field: "m", Message: fmt.Sprintf("must be non-negative, got %d", m)}
	case n < 0:
		return apperrors.ValidationError{Field: "n", Message: fmt.Sprintf("must be non-negative, got %d", n)}
	case p < 0:
		return apperrors.ValidationError{Field: "p", Message: fmt.Sprintf("must be non-negative, got %d", p)}
	case len(a) != m*n:
		return apperrors.ValidationError{Field: "a", Message: fmt.Sprintf("expected %d×%d = %d elements, got %d", m, n, m*n, len(a))}
	case len(b) != n*p:
		return apperrors.ValidationError{Field: "b", Message: fmt.Sprintf("expected %d×%d = %d elements, got %d", n, p, n*p, len(b))}
	}
	return nil
}
