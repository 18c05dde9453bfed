package registry

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// Finite, exactly-representable range. NaN and Inf behavior is
// deliberately unspecified, so the generators stay clear of them.
func drawPart(rt *rapid.T, label string) float64 {
	return rapid.Float64Range(-1e12, 1e12).Draw(rt, label)
}

func TestProperty_BufferRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		re := drawPart(rt, "re")
		im := drawPart(rt, "im")

		r := New()
		h, err := r.CreateFromBuffer(scalar.Complex1x1(re, im))
		if err != nil {
			rt.Fatalf("CreateFromBuffer returned error: %v", err)
		}

		b, err := r.ToBuffer(h)
		if err != nil {
			rt.Fatalf("ToBuffer returned error: %v", err)
		}
		if b.At(0, 0) != re {
			rt.Errorf("real part = %v, want %v", b.At(0, 0), re)
		}
		if im != 0 {
			if !b.IsComplex() || b.ImagAt(0, 0) != im {
				rt.Errorf("imag part = %v (complex=%v), want %v", b.ImagAt(0, 0), b.IsComplex(), im)
			}
		} else if b.IsComplex() {
			rt.Error("zero imaginary part exported a complex buffer")
		}
	})
}

func TestProperty_CopyMatchesAndOutlivesSource(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		re := drawPart(rt, "re")
		im := drawPart(rt, "im")

		r := New()
		h, err := r.CreateFromBuffer(scalar.Complex1x1(re, im))
		if err != nil {
			rt.Fatalf("CreateFromBuffer returned error: %v", err)
		}

		h2, err := r.Copy(h)
		if err != nil {
			rt.Fatalf("Copy returned error: %v", err)
		}
		if h2 == h {
			rt.Fatal("Copy returned the source handle")
		}

		src, _ := r.ToBuffer(h)
		dup, _ := r.ToBuffer(h2)
		if !src.Equal(dup) {
			rt.Error("copy differs from source")
		}

		if err := r.Delete(h); err != nil {
			rt.Fatalf("Delete returned error: %v", err)
		}
		if !r.IsValid(h2) {
			rt.Error("copy invalidated by deleting the source")
		}
	})
}

func TestProperty_AddComponentwise(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ar := drawPart(rt, "ar")
		ai := drawPart(rt, "ai")
		br := drawPart(rt, "br")
		bi := drawPart(rt, "bi")

		r := New()
		a, err := r.CreateFromBuffer(scalar.Complex1x1(ar, ai))
		if err != nil {
			rt.Fatalf("CreateFromBuffer(a): %v", err)
		}
		b, err := r.CreateFromBuffer(scalar.Complex1x1(br, bi))
		if err != nil {
			rt.Fatalf("CreateFromBuffer(b): %v", err)
		}

		sum, err := r.Add(a, b)
		if err != nil {
			rt.Fatalf("Add returned error: %v", err)
		}
		if sum == a || sum == b {
			rt.Fatal("Add reused an operand handle")
		}

		sb, _ := r.ToBuffer(sum)
		if sb.At(0, 0) != ar+br || sb.ImagAt(0, 0) != ai+bi {
			rt.Errorf("sum = (%v, %v), want (%v, %v)",
				sb.At(0, 0), sb.ImagAt(0, 0), ar+br, ai+bi)
		}

		// Operands unchanged.
		ab, _ := r.ToBuffer(a)
		bb, _ := r.ToBuffer(b)
		if ab.At(0, 0) != ar || ab.ImagAt(0, 0) != ai {
			rt.Error("operand a changed by Add")
		}
		if bb.At(0, 0) != br || bb.ImagAt(0, 0) != bi {
			rt.Error("operand b changed by Add")
		}
	})
}

func TestProperty_SnapshotRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		re := drawPart(rt, "re")
		im := drawPart(rt, "im")

		r := New()
		h, err := r.CreateFromBuffer(scalar.Complex1x1(re, im))
		if err != nil {
			rt.Fatalf("CreateFromBuffer returned error: %v", err)
		}

		snap, err := r.Save(h)
		if err != nil {
			rt.Fatalf("Save returned error: %v", err)
		}
		data, err := EncodeSnapshot(snap)
		if err != nil {
			rt.Fatalf("EncodeSnapshot returned error: %v", err)
		}
		decoded, err := DecodeSnapshot(data)
		if err != nil {
			rt.Fatalf("DecodeSnapshot returned error: %v", err)
		}

		h2, err := r.Restore(decoded)
		if err != nil {
			rt.Fatalf("Restore returned error: %v", err)
		}
		b, _ := r.ToBuffer(h2)
		if b.At(0, 0) != re || b.ImagAt(0, 0) != im {
			rt.Errorf("restored = (%v, %v), want (%v, %v)", b.At(0, 0), b.ImagAt(0, 0), re, im)
		}
	})
}
