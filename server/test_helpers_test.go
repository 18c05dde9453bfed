package server

import (
	"context"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/store"
)

func connectReq[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

func bg() context.Context {
	return context.Background()
}

// newTestService builds a RegistryService over a fresh registry with no
// snapshot store.
func newTestService() (*RegistryService, *registry.Registry) {
	reg := registry.New()
	sessions := NewSessionStore(reg)
	return NewRegistryService(reg, sessions, nil), reg
}

// newTestServiceWithStore builds a RegistryService backed by a sqlite
// store in a temp dir.
func newTestServiceWithStore(t *testing.T) *RegistryService {
	t.Helper()

	shelf, err := store.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { shelf.Close() })

	reg := registry.New()
	return NewRegistryService(reg, NewSessionStore(reg), shelf)
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %v, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("error code = %v, want %v (err: %v)", got, code, err)
	}
}
