package matrix

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
)

// Operands is a conformable pair of factors: A is m×n and B is n×p.
type Operands struct {
	A *Dense
	B *Dense
}

type operandsDocument struct {
	A [][]float64 `json:"a"`
	B [][]float64 `json:"b"`
}

// Load reads operands from a JSON file of the form
//
//	{"a": [[1, 2], [3, 4]], "b": [[5], [6]]}
//
// An empty "a" with a non-empty "b" (or the reverse) is rejected because
// the inner dimension cannot be inferred.
func Load(path string) (Operands, error) {
	f, err := os.Open(path)
	if err != nil {
		return Operands{}, apperrors.NewConfigError("cannot open input file: %v", err)
	}
	defer f.Close()

	ops, err := Decode(f)
	if err != nil {
		return Operands{}, fmt.Errorf("%s: %w", path, err)
	}
	return ops, nil
}

// Decode parses the operands document from r.
func Decode(r io.Reader) (Operands, error) {
	var doc operandsDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Operands{}, apperrors.NewConfigError("invalid operands document: %v", err)
	}

	a, err := FromRows(doc.A)
	if err != nil {
		return Operands{}, apperrors.WrapError(err, "matrix a")
	}
	b, err := FromRows(doc.B)
	if err != nil {
		return Operands{}, apperrors.WrapError(err, "matrix b")
	}
	if a.Cols != b.Rows {
		return Operands{}, apperrors.ValidationError{
			Field:   "operands",
			Message: fmt.Sprintf("cannot multiply %d×%d by %d×%d", a.Rows, a.Cols, b.Rows, b.Cols),
		}
	}
	return Operands{A: a, B: b}, nil
}
