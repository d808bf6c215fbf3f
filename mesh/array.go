package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DataKind is the scalar type carried by an Array
type DataKind uint8

const (
	Float64 DataKind = iota
	Int
)

func (k DataKind) String() string {
	switch k {
	case Int:
		return "int"
	default:
		return "double"
	}
}

// Array is one step of field data: one row per entity, one column per
// component.
type Array interface {
	Dims() (r, c int)
	At(i, j int) float64
	Kind() DataKind
}

// FloatArray is a real valued Array backed by a gonum matrix
type FloatArray struct {
	rows, cols int
	m          *mat.Dense // nil when rows == 0
}

// NewFloatArray wraps row-major data. It panics when len(data) != rows*cols.
func NewFloatArray(rows, cols int, data []float64) *FloatArray {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("mesh: float array data length %d does not match %dx%d", len(data), rows, cols))
	}
	a := &FloatArray{rows: rows, cols: cols}
	if rows > 0 && cols > 0 {
		a.m = mat.NewDense(rows, cols, data)
	}
	return a
}

// FloatColumn returns a single component array
func FloatColumn(data []float64) *FloatArray {
	return NewFloatArray(len(data), 1, data)
}

// FloatRows copies a slice of equal length rows
func FloatRows(rows [][]float64) *FloatArray {
	if len(rows) == 0 {
		return &FloatArray{}
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			panic(fmt.Sprintf("mesh: row %d has %d components, expected %d", i, len(r), cols))
		}
		data = append(data, r...)
	}
	return NewFloatArray(len(rows), cols, data)
}

// FloatDense wraps an existing gonum matrix without copying
func FloatDense(m *mat.Dense) *FloatArray {
	r, c := m.Dims()
	return &FloatArray{rows: r, cols: c, m: m}
}

func (a *FloatArray) Dims() (int, int) { return a.rows, a.cols }
func (a *FloatArray) At(i, j int) float64 { return a.m.At(i, j) }
func (a *FloatArray) Kind() DataKind { return Float64 }
func (a *FloatArray) Dense() *mat.Dense { return a.m }
func (a *FloatArray) Set(i, j int, v float64) { a.m.Set(i, j, v) }

// IntArray is an integer valued Array
type IntArray struct {
	rows, cols int
	data       []int
}

// NewIntArray wraps row-major data. It panics when len(data) != rows*cols.
func NewIntArray(rows, cols int, data []int) *IntArray {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("mesh: int array data length %d does not match %dx%d", len(data), rows, cols))
	}
	return &IntArray{rows: rows, cols: cols, data: data}
}

// IntColumn returns a single component array
func IntColumn(data []int) *IntArray {
	return NewIntArray(len(data), 1, data)
}

func (a *IntArray) Dims() (int, int) { return a.rows, a.cols }
func (a *IntArray) At(i, j int) float64 { return float64(a.IntAt(i, j)) }
func (a *IntArray) IntAt(i, j int) int { return a.data[i*a.cols+j] }
func (a *IntArray) Kind() DataKind { return Int }

// Row returns a copy of row i as reals
func Row(a Array, i int) []float64 {
	_, c := a.Dims()
	row := make([]float64, c)
	for j := range row {
		row[j] = a.At(i, j)
	}
	return row
}
