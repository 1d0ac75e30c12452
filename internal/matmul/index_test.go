package matmul

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRowCol(t *testing.T) {
	t.Parallel()
	tests := []struct {
		idx, p   int
		row, col int
	}{
		{0, 1, 0, 0},
		{0, 4, 0, 0},
		{3, 4, 0, 3},
		{4, 4, 1, 0},
		{11, 4, 2, 3},
		{7, 1, 7, 0},
	}
	for _, tt := range tests {
		row, col := RowCol(tt.idx, tt.p)
		if row != tt.row || col != tt.col {
			t.Errorf("RowCol(%d, %d) = (%d, %d), want (%d, %d)", tt.idx, tt.p, row, col, tt.row, tt.col)
		}
	}
}

// TestRowCol_RoundTrip_PropertyBased verifies row·p + col == idx for every
// index of every shape.
func TestRowCol_RoundTrip_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("row(idx)*p + col(idx) == idx", prop.ForAll(
		func(m, p int) bool {
			for idx := 0; idx < m*p; idx++ {
				row, col := RowCol(idx, p)
				if row*p+col != idx || row < 0 || row >= m || col < 0 || col >= p {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

func TestDot(t *testing.T) {
	t.Parallel()
	// A = [[1,2],[3,4]], B = [[5,6],[7,8]]
	a := []float64{1, 2, 3, 4}
	b := []float64{5, 6, 7, 8}
	want := []float64{19, 22, 43, 50}
	for idx, w := range want {
		if got := Dot(a, b, 2, 2, idx); got != w {
			t.Errorf("Dot(idx=%d) = %v, want %v", idx, got, w)
		}
	}
}

func TestDot_StridesThroughB(t *testing.T) {
	t.Parallel()
	// A is 1×3, B is 3×4; cell (0,2) must read B[2], B[6], B[10].
	a := []float64{1, 10, 100}
	b := []float64{
		0, 0, 1, 0,
		0, 0, 2, 0,
		0, 0, 3, 0,
	}
	if got := Dot(a, b, 3, 4, 2); got != 321 {
		t.Errorf("Dot = %v, want 321", got)
	}
}

func TestDot_AccumulatesInIndexOrder(t *testing.T) {
	t.Parallel()
	// 1e16 + 1 - 1e16 is 0 when summed left to right in float64 and 1 in
	// exact arithmetic; the sequential order must be preserved.
	a := []float64{1e16, 1, -1e16}
	b := []float64{1, 1, 1}
	if got := Dot(a, b, 3, 1, 0); got != 0 {
		t.Errorf("Dot = %v, want 0 (left-to-right float64 accumulation)", got)
	}
}

func TestDot_EmptyInnerDimension(t *testing.T) {
	t.Parallel()
	if got := Dot(nil, nil, 0, 3, 4); got != 0 {
		t.Errorf("Dot with n=0 = %v, want 0", got)
	}
}
