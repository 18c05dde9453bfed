package server

import (
	"fmt"

	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// Wire types for the registry service. Hand-written JSON DTOs; see
// codec.go for why these are not generated protobuf messages.

// HandleMsg identifies a live value and carries its display rendering.
type HandleMsg struct {
	Id      uint64 `json:"id"`
	Display string `json:"display,omitempty"`
}

// BufferMsg is the wire form of a host buffer. The imaginary plane is
// present exactly when the value is complex.
type BufferMsg struct {
	Kind string    `json:"kind,omitempty"` // defaults to "float64"
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag,omitempty"`
}

// toBuffer converts the wire form to a scalar.Buffer, preserving the
// declared element kind so mistyped buffers are rejected downstream.
func (m *BufferMsg) toBuffer() (*scalar.Buffer, error) {
	if m == nil {
		return nil, nil
	}
	kind, err := kindFromString(m.Kind)
	if err != nil {
		return nil, err
	}
	return &scalar.Buffer{
		Kind: kind,
		Rows: m.Rows,
		Cols: m.Cols,
		Real: m.Real,
		Imag: m.Imag,
	}, nil
}

func bufferMsg(b *scalar.Buffer) *BufferMsg {
	return &BufferMsg{
		Kind: b.Kind.String(),
		Rows: b.Rows,
		Cols: b.Cols,
		Real: b.Real,
		Imag: b.Imag,
	}
}

func kindFromString(s string) (scalar.Kind, error) {
	switch s {
	case "", "float64":
		return scalar.KindFloat64, nil
	case "float32":
		return scalar.KindFloat32, nil
	case "int64":
		return scalar.KindInt64, nil
	case "uint64":
		return scalar.KindUint64, nil
	case "uint8":
		return scalar.KindUint8, nil
	default:
		return 0, fmt.Errorf("unknown element kind %q", s)
	}
}

// CreateRequest creates a default value, or a copy when CopyFrom is set.
type CreateRequest struct {
	SessionId string `json:"session_id,omitempty"`
	CopyFrom  uint64 `json:"copy_from,omitempty"`
}

// CreateResponse returns the fresh handle.
type CreateResponse struct {
	Handle *HandleMsg `json:"handle"`
}

// CreateFromBufferRequest creates a value from a 1x1 host buffer.
type CreateFromBufferRequest struct {
	SessionId string     `json:"session_id,omitempty"`
	Buffer    *BufferMsg `json:"buffer"`
}

// DeleteRequest releases a handle.
type DeleteRequest struct {
	Handle uint64 `json:"handle"`
}

// DeleteResponse is empty; deletion has no result.
type DeleteResponse struct{}

// IsValidRequest asks whether a handle is live.
type IsValidRequest struct {
	Handle uint64 `json:"handle"`
}

// IsValidResponse reports liveness.
type IsValidResponse struct {
	Valid bool `json:"valid"`
}

// DisplayRequest renders a value.
type DisplayRequest struct {
	Handle uint64 `json:"handle"`
}

// DisplayResponse carries the rendering.
type DisplayResponse struct {
	Text string `json:"text"`
}

// ToBufferRequest exports a value.
type ToBufferRequest struct {
	Handle uint64 `json:"handle"`
}

// ToBufferResponse carries the exported buffer.
type ToBufferResponse struct {
	Buffer *BufferMsg `json:"buffer"`
}

// AddRequest sums two values into a new one.
type AddRequest struct {
	SessionId string `json:"session_id,omitempty"`
	A         uint64 `json:"a"`
	B         uint64 `json:"b"`
}

// AddResponse returns the handle of the sum.
type AddResponse struct {
	Handle *HandleMsg `json:"handle"`
}

// SaveSnapshotRequest persists a value to the snapshot store.
type SaveSnapshotRequest struct {
	Handle uint64 `json:"handle"`
	Name   string `json:"name"`
}

// SaveSnapshotResponse reports the persisted version tag.
type SaveSnapshotResponse struct {
	DataVersion uint32 `json:"data_version"`
}

// RestoreSnapshotRequest reconstructs a value from the snapshot store.
type RestoreSnapshotRequest struct {
	SessionId string `json:"session_id,omitempty"`
	Name      string `json:"name"`
}

// RestoreSnapshotResponse returns the fresh handle.
type RestoreSnapshotResponse struct {
	Handle *HandleMsg `json:"handle"`
}

// CreateSessionRequest opens a session that owns handles.
type CreateSessionRequest struct {
	Name string `json:"name,omitempty"`
}

// CreateSessionResponse returns the session ID.
type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

// DestroySessionRequest closes a session and releases its handles.
type DestroySessionRequest struct {
	SessionId string `json:"session_id"`
}

// DestroySessionResponse reports how many handles were released.
type DestroySessionResponse struct {
	ReleasedHandles int `json:"released_handles"`
}
