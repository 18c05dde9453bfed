// Package scalar implements the complex scalar payload managed by the
// handle registry: a two-field (real, imaginary) value with construction
// from a host buffer, display formatting, buffer export, and addition.
package scalar

import (
	"fmt"
)

// Scalar is a scalar complex number. The zero value is 0+0i, matching
// default construction.
type Scalar struct {
	Real float64
	Imag float64
}

// FromBuffer constructs a Scalar by copying exactly one element from a
// host buffer. The buffer must be 1x1 and carry float64 elements;
// otherwise ErrInvalidType or ErrInvalidShape is returned and no value
// is produced.
func FromBuffer(b *Buffer) (Scalar, error) {
	if b == nil {
		return Scalar{}, fmt.Errorf("scalar: nil buffer: %w", ErrInvalidShape)
	}
	if b.Kind != KindFloat64 {
		return Scalar{}, fmt.Errorf("scalar: element kind %s: %w", b.Kind, ErrInvalidType)
	}
	if b.Rows != 1 || b.Cols != 1 || len(b.Real) != 1 {
		return Scalar{}, fmt.Errorf("scalar: size %dx%d, want 1x1: %w", b.Rows, b.Cols, ErrInvalidShape)
	}
	if b.IsComplex() && len(b.Imag) != 1 {
		return Scalar{}, fmt.Errorf("scalar: imaginary plane has %d elements, want 1: %w",
			len(b.Imag), ErrInvalidShape)
	}
	s := Scalar{Real: b.Real[0]}
	if b.IsComplex() {
		s.Imag = b.Imag[0]
	}
	return s, nil
}

// Add returns the component-wise sum of s and other as a new Scalar.
// Neither operand is modified.
func (s Scalar) Add(other Scalar) Scalar {
	return Scalar{Real: s.Real + other.Real, Imag: s.Imag + other.Imag}
}

// AddAssign adds other into s in place. This is the += form; the registry
// never exposes it, since registered values are immutable once created.
func (s *Scalar) AddAssign(other Scalar) {
	s.Real += other.Real
	s.Imag += other.Imag
}

// Equal reports whether s and other have identical components.
func (s Scalar) Equal(other Scalar) bool {
	return s.Real == other.Real && s.Imag == other.Imag
}

// String renders the scalar for display: just the real part when the
// imaginary part is exactly zero, "<real> + <imag>i" otherwise.
func (s Scalar) String() string {
	if s.Imag == 0 {
		return fmt.Sprintf("%g", s.Real)
	}
	return fmt.Sprintf("%g + %gi", s.Real, s.Imag)
}

// ToBuffer exports the scalar as a 1x1 host buffer. The imaginary plane
// is present exactly when the imaginary part is nonzero, mirroring the
// host's split real/imaginary representation.
func (s Scalar) ToBuffer() *Buffer {
	if s.Imag == 0 {
		return Real1x1(s.Real)
	}
	return Complex1x1(s.Real, s.Imag)
}
