package scalar

import (
	"errors"
	"fmt"
)

// Buffer validation errors.
var (
	ErrInvalidShape = errors.New("buffer is not 1x1")
	ErrInvalidType  = errors.New("buffer element type is not float64")
)

// Kind identifies the element class of a host buffer. Scalars only accept
// KindFloat64; the other kinds exist so a caller handing over the wrong
// element class gets a typed rejection instead of silent coercion.
type Kind uint8

const (
	KindFloat64 Kind = iota
	KindFloat32
	KindInt64
	KindUint64
	KindUint8
)

// String returns the element class name.
func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindFloat32:
		return "float32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindUint8:
		return "uint8"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Buffer is a two-dimensional numeric buffer in the host's native layout:
// column-major, with separate real and imaginary planes. A real-only
// buffer has a nil Imag plane.
type Buffer struct {
	Kind Kind      `cbor:"1,keyasint"`
	Rows int       `cbor:"2,keyasint"`
	Cols int       `cbor:"3,keyasint"`
	Real []float64 `cbor:"4,keyasint"`
	Imag []float64 `cbor:"5,keyasint,omitempty"`
}

// NewBuffer allocates a real-valued rows x cols float64 buffer.
func NewBuffer(rows, cols int) *Buffer {
	return &Buffer{
		Kind: KindFloat64,
		Rows: rows,
		Cols: cols,
		Real: make([]float64, rows*cols),
	}
}

// NewComplexBuffer allocates a complex rows x cols float64 buffer with
// both planes present.
func NewComplexBuffer(rows, cols int) *Buffer {
	b := NewBuffer(rows, cols)
	b.Imag = make([]float64, rows*cols)
	return b
}

// Real1x1 builds a 1x1 real buffer holding re.
func Real1x1(re float64) *Buffer {
	b := NewBuffer(1, 1)
	b.Real[0] = re
	return b
}

// Complex1x1 builds a 1x1 complex buffer holding re + im*i.
func Complex1x1(re, im float64) *Buffer {
	b := NewComplexBuffer(1, 1)
	b.Real[0] = re
	b.Imag[0] = im
	return b
}

// IsComplex reports whether the buffer carries an imaginary plane.
func (b *Buffer) IsComplex() bool {
	return b.Imag != nil
}

// Shape returns the buffer dimensions.
func (b *Buffer) Shape() (rows, cols int) {
	return b.Rows, b.Cols
}

// At returns the real component at (i, j) in column-major order.
func (b *Buffer) At(i, j int) float64 {
	return b.Real[j*b.Rows+i]
}

// ImagAt returns the imaginary component at (i, j), or 0 for a real buffer.
func (b *Buffer) ImagAt(i, j int) float64 {
	if b.Imag == nil {
		return 0
	}
	return b.Imag[j*b.Rows+i]
}

// Equal reports whether two buffers have the same shape, kind, planes,
// and element values.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.Kind != other.Kind || b.Rows != other.Rows || b.Cols != other.Cols {
		return false
	}
	if b.IsComplex() != other.IsComplex() {
		return false
	}
	for i := range b.Real {
		if b.Real[i] != other.Real[i] {
			return false
		}
	}
	for i := range b.Imag {
		if b.Imag[i] != other.Imag[i] {
			return false
		}
	}
	return true
}
