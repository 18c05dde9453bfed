package registry

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// SnapshotVersion is the highest persisted-state version this
// implementation understands.
const SnapshotVersion uint32 = 1

// Snapshot persistence errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrCorruptSnapshot    = errors.New("corrupt snapshot")
)

// Snapshot is the persisted state of one proxy: a version tag plus the
// exported host buffer. Restore reconstructs the value through
// CreateFromBuffer, never by poking registry internals.
type Snapshot struct {
	DataVersion uint32         `cbor:"1,keyasint"`
	Data        *scalar.Buffer `cbor:"2,keyasint"`
}

// cborEncMode uses canonical encoding so identical snapshots serialize
// to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("registry: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Save exports the value at h as a current-version snapshot.
func (r *Registry) Save(h Handle) (*Snapshot, error) {
	b, err := r.ToBuffer(h)
	if err != nil {
		return nil, err
	}
	return &Snapshot{DataVersion: SnapshotVersion, Data: b}, nil
}

// Restore reconstructs a value from a snapshot and registers it under a
// fresh handle. A snapshot newer than SnapshotVersion is rejected with
// ErrUnsupportedVersion; there is no best-effort parse of newer formats.
func (r *Registry) Restore(s *Snapshot) (Handle, error) {
	return r.RestoreOwned(s, "")
}

// RestoreOwned is Restore with an owner tag for the new handle.
func (r *Registry) RestoreOwned(s *Snapshot, owner string) (Handle, error) {
	if s == nil {
		return InvalidHandle, fmt.Errorf("registry: nil snapshot: %w", ErrCorruptSnapshot)
	}
	if s.DataVersion > SnapshotVersion {
		return InvalidHandle, fmt.Errorf("registry: snapshot version %d, understand up to %d: %w",
			s.DataVersion, SnapshotVersion, ErrUnsupportedVersion)
	}
	if s.Data == nil {
		return InvalidHandle, fmt.Errorf("registry: snapshot has no data: %w", ErrCorruptSnapshot)
	}
	return r.CreateFromBufferOwned(s.Data, owner)
}

// EncodeSnapshot serializes a snapshot to CBOR bytes.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// DecodeSnapshot deserializes a snapshot from CBOR bytes. Decoding does
// not validate the version; Restore does.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("registry: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
