// Command generate-golden writes the golden fixtures used by the matmul
// tests. Products are computed by a sequential triple loop that shares no
// code with the distributed implementation.
//
// Usage:
//
//	go run ./cmd/generate-golden -out internal/matmul/testdata/golden.json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

type goldenCase struct {
	Name string    `json:"name"`
	M    int       `json:"m"`
	N    int       `json:"n"`
	P    int       `json:"p"`
	A    []float64 `json:"a"`
	B    []float64 `json:"b"`
	C    []float64 `json:"c"`
}

// multiply is the reference oracle: C[i][j] = Σ_k A[i][k]·B[k][j].
func multiply(a, b []float64, m, n, p int) []float64 {
	c := make([]float64, m*p)
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a[i*n+k] * b[k*p+j]
			}
			c[i*p+j] = sum
		}
	}
	return c
}

// patterned fills a rows×cols matrix with quarter-integers in [-2, 2]. The
// values and all their partial sums are exact in float64, so the fixtures
// do not depend on summation order or fused multiply-add.
func patterned(rows, cols, salt int) []float64 {
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = float64((i*7+salt*3)%17-8) / 4
	}
	return out
}

func newCase(name string, m, n, p int, a, b []float64) goldenCase {
	return goldenCase{Name: name, M: m, N: n, P: p, A: a, B: b, C: multiply(a, b, m, n, p)}
}

func cases() []goldenCase {
	return []goldenCase{
		newCase("2x2", 2, 2, 2, []float64{1, 2, 3, 4}, []float64{5, 6, 7, 8}),
		newCase("scalar", 1, 1, 1, []float64{3}, []float64{-2.5}),
		newCase("row-times-column", 1, 3, 1, []float64{1, 2, 3}, []float64{4, 5, 6}),
		newCase("column-times-row", 3, 1, 2, []float64{1, 2, 3}, []float64{4, 5}),
		newCase("2x3-by-3x2", 2, 3, 2, []float64{1, 2, 3, 4, 5, 6}, []float64{7, 8, 9, 10, 11, 12}),
		newCase("identity-left", 3, 3, 2, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, []float64{1.5, -2, 0.25, 4, 8, -0.5}),
		newCase("inner-dimension-zero", 2, 0, 3, []float64{}, []float64{}),
		newCase("patterned-4x5x3", 4, 5, 3, patterned(4, 5, 1), patterned(5, 3, 2)),
		newCase("patterned-7x3x6", 7, 3, 6, patterned(7, 3, 3), patterned(3, 6, 4)),
	}
}

// write emits one case per line so that diffs stay readable.
func write(w io.Writer, cs []goldenCase) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "{")
	fmt.Fprintln(bw, `  "cases": [`)
	for i, c := range cs {
		line, err := json.Marshal(c)
		if err != nil {
			return err
		}
		sep := ","
		if i == len(cs)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "    %s%s\n", line, sep)
	}
	fmt.Fprintln(bw, "  ]")
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func main() {
	out := flag.String("out", "internal/matmul/testdata/golden.json", "Destination file.")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
		os.Exit(1)
	}
	if err := write(f, cases()); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d cases to %s\n", len(cases()), *out)
}
