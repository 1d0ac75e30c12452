package matmul

// RowCol maps a linear row-major index into an m×p matrix to its row and
// column.
func RowCol(idx, p int) (row, col int) {
	return idx / p, idx % p
}

// Dot computes cell idx of the m×p product of a (m×n) and b (n×p), both
// row-major. Terms are accumulated in order k = 0..n-1 so results are
// reproducible bit for bit.
func Dot(a, b []float64, n, p, idx int) float64 {
	row, col := RowCol(idx, p)
	ar := a[row*n : row*n+n]
	var sum float64
	for k, av := range ar {
		sum += av * b[k*p+col]
	}
	return sum
}
