package server

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/scalar"
	"github.com/jdbancal/MyFavoriteDouble/store"
)

// RegistryService implements the registry's command surface as Connect
// unary handlers.
type RegistryService struct {
	reg      *registry.Registry
	sessions *SessionStore
	shelf    *store.Store // nil when no durable store is configured
}

// NewRegistryService creates a RegistryService. shelf may be nil.
func NewRegistryService(reg *registry.Registry, sessions *SessionStore, shelf *store.Store) *RegistryService {
	return &RegistryService{reg: reg, sessions: sessions, shelf: shelf}
}

// connectError maps registry error taxonomy onto Connect codes.
func connectError(err error) error {
	switch {
	case errors.Is(err, registry.ErrInvalidHandle):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, scalar.ErrInvalidShape), errors.Is(err, scalar.ErrInvalidType):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, registry.ErrUnsupportedVersion), errors.Is(err, registry.ErrCorruptSnapshot):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// owner resolves the owner tag for a session ID. An unknown session is
// rejected rather than silently minting unowned handles.
func (s *RegistryService) owner(sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	if _, ok := s.sessions.Get(sessionID); !ok {
		return "", connect.NewError(connect.CodeNotFound,
			fmt.Errorf("session %q not found", sessionID))
	}
	return sessionID, nil
}

func (s *RegistryService) handleMsg(h registry.Handle) *HandleMsg {
	display, err := s.reg.Display(h)
	if err != nil {
		display = ""
	}
	return &HandleMsg{Id: uint64(h), Display: display}
}

// Create allocates a default value, or copies an existing one when
// copy_from is set.
func (s *RegistryService) Create(
	ctx context.Context,
	req *connect.Request[CreateRequest],
) (*connect.Response[CreateResponse], error) {
	owner, err := s.owner(req.Msg.SessionId)
	if err != nil {
		return nil, err
	}

	var h registry.Handle
	if req.Msg.CopyFrom != 0 {
		h, err = s.reg.CopyOwned(registry.Handle(req.Msg.CopyFrom), owner)
		if err != nil {
			return nil, connectError(err)
		}
	} else {
		h = s.reg.CreateOwned(owner)
	}

	return connect.NewResponse(&CreateResponse{Handle: s.handleMsg(h)}), nil
}

// CreateFromBuffer constructs a value from a 1x1 host buffer.
func (s *RegistryService) CreateFromBuffer(
	ctx context.Context,
	req *connect.Request[CreateFromBufferRequest],
) (*connect.Response[CreateResponse], error) {
	if req.Msg.Buffer == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("buffer is required"))
	}
	owner, err := s.owner(req.Msg.SessionId)
	if err != nil {
		return nil, err
	}

	b, err := req.Msg.Buffer.toBuffer()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	h, err := s.reg.CreateFromBufferOwned(b, owner)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&CreateResponse{Handle: s.handleMsg(h)}), nil
}

// Delete releases a handle. A second delete of the same handle fails.
func (s *RegistryService) Delete(
	ctx context.Context,
	req *connect.Request[DeleteRequest],
) (*connect.Response[DeleteResponse], error) {
	if err := s.reg.Delete(registry.Handle(req.Msg.Handle)); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&DeleteResponse{}), nil
}

// IsValid reports handle liveness. It never fails, whatever the handle.
func (s *RegistryService) IsValid(
	ctx context.Context,
	req *connect.Request[IsValidRequest],
) (*connect.Response[IsValidResponse], error) {
	valid := s.reg.IsValid(registry.Handle(req.Msg.Handle))
	return connect.NewResponse(&IsValidResponse{Valid: valid}), nil
}

// Display renders a value.
func (s *RegistryService) Display(
	ctx context.Context,
	req *connect.Request[DisplayRequest],
) (*connect.Response[DisplayResponse], error) {
	text, err := s.reg.Display(registry.Handle(req.Msg.Handle))
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&DisplayResponse{Text: text}), nil
}

// ToBuffer exports a value as a 1x1 host buffer.
func (s *RegistryService) ToBuffer(
	ctx context.Context,
	req *connect.Request[ToBufferRequest],
) (*connect.Response[ToBufferResponse], error) {
	b, err := s.reg.ToBuffer(registry.Handle(req.Msg.Handle))
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&ToBufferResponse{Buffer: bufferMsg(b)}), nil
}

// Add registers the sum of two values as a new value.
func (s *RegistryService) Add(
	ctx context.Context,
	req *connect.Request[AddRequest],
) (*connect.Response[AddResponse], error) {
	owner, err := s.owner(req.Msg.SessionId)
	if err != nil {
		return nil, err
	}

	h, err := s.reg.AddOwned(registry.Handle(req.Msg.A), registry.Handle(req.Msg.B), owner)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&AddResponse{Handle: s.handleMsg(h)}), nil
}

// SaveSnapshot persists a value to the durable snapshot store.
func (s *RegistryService) SaveSnapshot(
	ctx context.Context,
	req *connect.Request[SaveSnapshotRequest],
) (*connect.Response[SaveSnapshotResponse], error) {
	if s.shelf == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("no snapshot store configured"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}

	snap, err := s.reg.Save(registry.Handle(req.Msg.Handle))
	if err != nil {
		return nil, connectError(err)
	}
	if err := s.shelf.Put(req.Msg.Name, snap); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&SaveSnapshotResponse{DataVersion: snap.DataVersion}), nil
}

// RestoreSnapshot reconstructs a value from the durable snapshot store.
func (s *RegistryService) RestoreSnapshot(
	ctx context.Context,
	req *connect.Request[RestoreSnapshotRequest],
) (*connect.Response[RestoreSnapshotResponse], error) {
	if s.shelf == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("no snapshot store configured"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}
	owner, err := s.owner(req.Msg.SessionId)
	if err != nil {
		return nil, err
	}

	snap, err := s.shelf.Get(req.Msg.Name)
	if err != nil {
		return nil, connectError(err)
	}
	h, err := s.reg.RestoreOwned(snap, owner)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&RestoreSnapshotResponse{Handle: s.handleMsg(h)}), nil
}

// SessionService implements session lifecycle as Connect unary handlers.
type SessionService struct {
	sessions *SessionStore
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions *SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// CreateSession opens a session.
func (s *SessionService) CreateSession(
	ctx context.Context,
	req *connect.Request[CreateSessionRequest],
) (*connect.Response[CreateSessionResponse], error) {
	session := s.sessions.Create(req.Msg.Name)
	return connect.NewResponse(&CreateSessionResponse{SessionId: session.ID}), nil
}

// DestroySession closes a session and releases every handle it owns.
func (s *SessionService) DestroySession(
	ctx context.Context,
	req *connect.Request[DestroySessionRequest],
) (*connect.Response[DestroySessionResponse], error) {
	if req.Msg.SessionId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("session_id is required"))
	}
	if _, ok := s.sessions.Get(req.Msg.SessionId); !ok {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("session %q not found", req.Msg.SessionId))
	}

	released := s.sessions.Destroy(req.Msg.SessionId)
	return connect.NewResponse(&DestroySessionResponse{ReleasedHandles: released}), nil
}
