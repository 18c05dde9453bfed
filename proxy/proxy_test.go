package proxy

import (
	"errors"
	"testing"

	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

func TestNew_OwnsLiveHandle(t *testing.T) {
	reg := registry.New()
	p := New(reg)

	h, err := p.Handle()
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !reg.IsValid(h) {
		t.Error("proxy handle is not live")
	}
	if !p.Valid() {
		t.Error("fresh proxy reports invalid")
	}
}

func TestClose_ReleasesExactlyOnce(t *testing.T) {
	reg := registry.New()
	p := New(reg)
	h, _ := p.Handle()

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if reg.IsValid(h) {
		t.Error("handle still live after Close")
	}
	if reg.Count() != 0 {
		t.Errorf("registry holds %d entries after Close, want 0", reg.Count())
	}

	// Second Close must not reach the registry with a second delete.
	err := p.Close()
	if !errors.Is(err, ErrClosed) {
		t.Errorf("second Close: got %v, want ErrClosed", err)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	reg := registry.New()
	p := New(reg)
	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if _, err := p.Display(); !errors.Is(err, ErrClosed) {
		t.Errorf("Display: got %v, want ErrClosed", err)
	}
	if _, err := p.ToBuffer(); !errors.Is(err, ErrClosed) {
		t.Errorf("ToBuffer: got %v, want ErrClosed", err)
	}
	if _, err := p.Clone(); !errors.Is(err, ErrClosed) {
		t.Errorf("Clone: got %v, want ErrClosed", err)
	}
	if _, err := p.Save(); !errors.Is(err, ErrClosed) {
		t.Errorf("Save: got %v, want ErrClosed", err)
	}
	if p.Valid() {
		t.Error("closed proxy reports valid")
	}
}

func TestClone_Independent(t *testing.T) {
	reg := registry.New()
	p, err := FromBuffer(reg, scalar.Complex1x1(2.5, 1.0))
	if err != nil {
		t.Fatalf("FromBuffer returned error: %v", err)
	}

	dup, err := p.Clone()
	if err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}

	pb, _ := p.ToBuffer()
	db, _ := dup.ToBuffer()
	if !pb.Equal(db) {
		t.Error("clone differs from source")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !dup.Valid() {
		t.Error("closing the source invalidated the clone")
	}
}

func TestAliasing_SharedHandle(t *testing.T) {
	reg := registry.New()
	p := New(reg)

	// Copy-assignment of the host object is aliasing: both names refer
	// to the same handle, and a close through one is a close of both.
	alias := p
	if err := alias.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if p.Valid() {
		t.Error("aliased proxy still valid after close through the alias")
	}
}

func TestAdd_NewProxy(t *testing.T) {
	reg := registry.New()
	a, err := FromBuffer(reg, scalar.Real1x1(3.5))
	if err != nil {
		t.Fatalf("FromBuffer(a): %v", err)
	}
	b, err := FromBuffer(reg, scalar.Complex1x1(2.5, 1.0))
	if err != nil {
		t.Fatalf("FromBuffer(b): %v", err)
	}

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	sb, _ := sum.ToBuffer()
	if sb.At(0, 0) != 6.0 || sb.ImagAt(0, 0) != 1.0 {
		t.Errorf("sum = (%v, %v), want (6, 1)", sb.At(0, 0), sb.ImagAt(0, 0))
	}
	if !a.Valid() || !b.Valid() {
		t.Error("Add consumed an operand")
	}
}

func TestSaveRestore(t *testing.T) {
	reg := registry.New()
	p, err := FromBuffer(reg, scalar.Complex1x1(-1.5, 0.25))
	if err != nil {
		t.Fatalf("FromBuffer returned error: %v", err)
	}

	snap, err := p.Save()
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	restored, err := Restore(reg, snap)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	rb, _ := restored.ToBuffer()
	if rb.At(0, 0) != -1.5 || rb.ImagAt(0, 0) != 0.25 {
		t.Errorf("restored = (%v, %v), want (-1.5, 0.25)", rb.At(0, 0), rb.ImagAt(0, 0))
	}
}

func TestRestore_UnsupportedVersion(t *testing.T) {
	reg := registry.New()

	snap := &registry.Snapshot{DataVersion: 999, Data: scalar.Real1x1(1)}
	_, err := Restore(reg, snap)
	if !errors.Is(err, registry.ErrUnsupportedVersion) {
		t.Errorf("got %v, want ErrUnsupportedVersion", err)
	}
}
