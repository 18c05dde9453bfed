package server

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/store"
)

// Connect procedure paths.
const (
	ProcedureCreate           = "/favdouble.v1.RegistryService/Create"
	ProcedureCreateFromBuffer = "/favdouble.v1.RegistryService/CreateFromBuffer"
	ProcedureDelete           = "/favdouble.v1.RegistryService/Delete"
	ProcedureIsValid          = "/favdouble.v1.RegistryService/IsValid"
	ProcedureDisplay          = "/favdouble.v1.RegistryService/Display"
	ProcedureToBuffer         = "/favdouble.v1.RegistryService/ToBuffer"
	ProcedureAdd              = "/favdouble.v1.RegistryService/Add"
	ProcedureSaveSnapshot     = "/favdouble.v1.RegistryService/SaveSnapshot"
	ProcedureRestoreSnapshot  = "/favdouble.v1.RegistryService/RestoreSnapshot"
	ProcedureCreateSession    = "/favdouble.v1.SessionService/CreateSession"
	ProcedureDestroySession   = "/favdouble.v1.SessionService/DestroySession"
)

var log = commonlog.GetLogger("favdouble.server")

// Server hosts the registry over Connect.
type Server struct {
	Registry *registry.Registry
	Sessions *SessionStore

	shelf      *store.Store
	mux        *http.ServeMux
	httpServer *http.Server
	stopSweep  func()

	sweepInterval time.Duration
	sweepTTL      time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithSnapshotStore enables the SaveSnapshot and RestoreSnapshot
// procedures, backed by the given store.
func WithSnapshotStore(s *store.Store) Option {
	return func(srv *Server) { srv.shelf = s }
}

// WithSweeper enables background expiry of idle handles. Handles held
// by well-behaved clients are refreshed on every use, so only abandoned
// ones age out.
func WithSweeper(interval, ttl time.Duration) Option {
	return func(srv *Server) {
		srv.sweepInterval = interval
		srv.sweepTTL = ttl
	}
}

// New creates a Server with a fresh registry and session store.
func New(opts ...Option) *Server {
	reg := registry.New()
	srv := &Server{
		Registry: reg,
		Sessions: NewSessionStore(reg),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.route()
	return srv
}

func (s *Server) route() {
	codec := connect.WithCodec(jsonCodec{})

	reg := NewRegistryService(s.Registry, s.Sessions, s.shelf)
	s.mux.Handle(ProcedureCreate,
		connect.NewUnaryHandler(ProcedureCreate, reg.Create, codec))
	s.mux.Handle(ProcedureCreateFromBuffer,
		connect.NewUnaryHandler(ProcedureCreateFromBuffer, reg.CreateFromBuffer, codec))
	s.mux.Handle(ProcedureDelete,
		connect.NewUnaryHandler(ProcedureDelete, reg.Delete, codec))
	s.mux.Handle(ProcedureIsValid,
		connect.NewUnaryHandler(ProcedureIsValid, reg.IsValid, codec))
	s.mux.Handle(ProcedureDisplay,
		connect.NewUnaryHandler(ProcedureDisplay, reg.Display, codec))
	s.mux.Handle(ProcedureToBuffer,
		connect.NewUnaryHandler(ProcedureToBuffer, reg.ToBuffer, codec))
	s.mux.Handle(ProcedureAdd,
		connect.NewUnaryHandler(ProcedureAdd, reg.Add, codec))
	s.mux.Handle(ProcedureSaveSnapshot,
		connect.NewUnaryHandler(ProcedureSaveSnapshot, reg.SaveSnapshot, codec))
	s.mux.Handle(ProcedureRestoreSnapshot,
		connect.NewUnaryHandler(ProcedureRestoreSnapshot, reg.RestoreSnapshot, codec))

	sess := NewSessionService(s.Sessions)
	s.mux.Handle(ProcedureCreateSession,
		connect.NewUnaryHandler(ProcedureCreateSession, sess.CreateSession, codec))
	s.mux.Handle(ProcedureDestroySession,
		connect.NewUnaryHandler(ProcedureDestroySession, sess.DestroySession, codec))
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe(addr string) error {
	if s.sweepInterval > 0 {
		s.stopSweep = s.Registry.StartSweeper(s.sweepInterval, s.sweepTTL)
		log.Infof("sweeping idle handles every %s (ttl %s)", s.sweepInterval, s.sweepTTL)
	}

	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}
	log.Infof("listening on %s", addr)

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down, stopping the sweeper if one is running.
func (s *Server) Stop(ctx context.Context) error {
	if s.stopSweep != nil {
		s.stopSweep()
		s.stopSweep = nil
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
