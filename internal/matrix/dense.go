package matrix

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
)

// Dense is a row-major matrix. Data has exactly Rows*Cols elements.
type Dense struct {
	Rows int
	Cols int
	Data []float64
}

// New returns a zero-filled rows×cols matrix.
func New(rows, cols int) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, apperrors.ValidationError{
			Field:   "dimensions",
			Message: fmt.Sprintf("must be non-negative, got %d×%d", rows, cols),
		}
	}
	return &Dense{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}, nil
}

// FromRows builds a matrix from a slice of equal-length rows.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return &Dense{}, nil
	}
	cols := len(rows[0])
	d := &Dense{Rows: len(rows), Cols: cols, Data: make([]float64, 0, len(rows)*cols)}
	for i, r := range rows {
		if len(r) != cols {
			return nil, apperrors.ValidationError{
				Field:   fmt.Sprintf("row %d", i),
				Message: fmt.Sprintf("has %d columns, expected %d", len(r), cols),
			}
		}
		d.Data = append(d.Data, r...)
	}
	return d, nil
}

// Random returns a rows×cols matrix with entries uniform in [-1, 1). The
// same seed always yields the same matrix.
func Random(rows, cols int, seed uint64) (*Dense, error) {
	d, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range d.Data {
		d.Data[i] = 2*rng.Float64() - 1
	}
	return d, nil
}

// At returns the element at row i, column j.
func (d *Dense) At(i, j int) float64 {
	return d.Data[i*d.Cols+j]
}

// Row returns row i as a slice aliasing d.Data.
func (d *Dense) Row(i int) []float64 {
	return d.Data[i*d.Cols : (i+1)*d.Cols]
}

// Clone returns a deep copy of d.
func (d *Dense) Clone() *Dense {
	return &Dense{Rows: d.Rows, Cols: d.Cols, Data: append([]float64(nil), d.Data...)}
}

// Reference computes a·b with gonum. It is independent of the distributed
// product and serves as its oracle.
func Reference(a, b *Dense) (*Dense, error) {
	if a.Cols != b.Rows {
		return nil, apperrors.ValidationError{
			Field:   "dimensions",
			Message: fmt.Sprintf("cannot multiply %d×%d by %d×%d", a.Rows, a.Cols, b.Rows, b.Cols),
		}
	}
	c, err := New(a.Rows, b.Cols)
	if err != nil {
		return nil, err
	}
	// gonum rejects zero-sized matrices; an empty inner dimension leaves
	// every cell at zero.
	if a.Rows == 0 || a.Cols == 0 || b.Cols == 0 {
		return c, nil
	}
	ga := mat.NewDense(a.Rows, a.Cols, a.Data)
	gb := mat.NewDense(b.Rows, b.Cols, b.Data)
	gc := mat.NewDense(c.Rows, c.Cols, c.Data)
	gc.Mul(ga, gb)
	return c, nil
}

// ErrMismatch is returned by Equal when two matrices differ.
var ErrMismatch = errors.New("matrices differ")

// Equal reports whether x and y have the same shape and every pair of
// cells agrees within tol, using a relative tolerance for large values.
// The returned error identifies the first mismatching cell.
func Equal(x, y *Dense, tol float64) error {
	if x.Rows != y.Rows || x.Cols != y.Cols {
		return fmt.Errorf("%w: shape %d×%d vs %d×%d", ErrMismatch, x.Rows, x.Cols, y.Rows, y.Cols)
	}
	for k := range x.Data {
		if !scalar.EqualWithinAbsOrRel(x.Data[k], y.Data[k], tol, tol) {
			return fmt.Errorf("%w: cell (%d, %d): %g vs %g", ErrMismatch, k/x.Cols, k%x.Cols, x.Data[k], y.Data[k])
		}
	}
	return nil
}
