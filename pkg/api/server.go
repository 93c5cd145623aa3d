// Package api serves diagrams over HTTP.
//
// Each browser gets a session identified by a cookie holding a random UUID.
// Loading the diagram (GET /api/diagram) starts a fresh session from the
// request's query, the stored blob for that cookie, or the defaults, in that
// order. Drags, control changes and resets then act on that session and
// report the canonical query the client should put in its address bar.
// Hit tests and renders from a client without a cookie see the defaults and
// do not start a session.
//
// Live sessions are kept in a bounded registry. Idle sessions, and the least
// recently used ones past the limit, are dropped; their state is already in
// storage and is reopened from there on the client's next request.
//
// Routes:
//
//	GET  /health
//	GET  /api/diagram            start a session from ?p0x=...&fd=...
//	GET  /api/diagram/hit        ?x=&y=&frame=canvas|world
//	POST /api/diagram/drag       {"point":"P3","x":10,"y":-20,"frame":"world"}
//	POST /api/diagram/control    {"kind":"magnitude","value":"75"}
//	POST /api/diagram/reset
//	GET  /api/diagram/render.svg (?engine=graphviz), render.png, render.dot
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/observability"
	"github.com/matzehuels/tensionlab/pkg/session"
	"github.com/matzehuels/tensionlab/pkg/state"
	"github.com/matzehuels/tensionlab/pkg/storage"
)

// CookieName holds the client session ID.
const CookieName = "tensionlab_session"

// Options configures a Server.
type Options struct {
	Backend  storage.Backend
	Keyer    storage.Keyer
	Codec    state.Codec
	TTL      time.Duration
	Frame    geom.Frame
	Defaults *state.State
	Logger   *log.Logger

	// MaxSessions bounds the live registry. Defaults to DefaultMaxSessions.
	MaxSessions int
	// IdleTimeout drops sessions unused for this long. Defaults to
	// DefaultIdleTimeout.
	IdleTimeout time.Duration
}

// Registry limits used when Options leaves them zero.
const (
	DefaultMaxSessions = 1024
	DefaultIdleTimeout = 30 * time.Minute
)

// Server holds one diagram session per client.
type Server struct {
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

// entry serializes access to one client's session.
type entry struct {
	mu   sync.Mutex
	sess *session.Session
	loc  *session.URLLocation

	lastUsed time.Time // guarded by Server.mu
}

// New creates a server. A nil backend keeps blobs in memory.
func New(opts Options) *Server {
	if opts.Backend == nil {
		opts.Backend = storage.NewMemoryBackend()
	}
	if opts.Keyer == nil {
		opts.Keyer = storage.NewDefaultKeyer()
	}
	if opts.Codec == nil {
		opts.Codec = state.JSONCodec{}
	}
	if opts.Frame == (geom.Frame{}) {
		opts.Frame = geom.Frame{Width: 500, Height: 400}
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{opts: opts, logger: logger, sessions: make(map[string]*entry), now: time.Now}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)
	r.Route("/api/diagram", func(r chi.Router) {
		r.Get("/", s.handleLoad)
		r.Get("/hit", s.handleHit)
		r.Post("/drag", s.handleDrag)
		r.Post("/control", s.handleControl)
		r.Post("/reset", s.handleReset)
		r.Get("/render.{format}", s.handleRender)
	})
	return r
}

// instrument logs each request and reports it to the HTTP hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		d := time.Since(start)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", d)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
	})
}

// cookieID returns the caller's session ID if it sent a valid cookie.
func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || errs.ValidateSessionID(c.Value) != nil {
		return "", false
	}
	return c.Value, true
}

// clientID returns the caller's session ID, issuing a new one if needed.
func (s *Server) clientID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := cookieID(r); ok {
		return id
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// acquire returns the session for id with its lock held. A fresh session is
// opened from query when fresh is set or the registry has none for id.
//
// The registry lock only covers the map; a new entry is inserted locked so
// that concurrent requests for the same id wait for it to finish opening
// instead of opening their own.
func (s *Server) acquire(ctx context.Context, id string, query url.Values, fresh bool) (*entry, error) {
	store, err := session.NewBackendStore(s.opts.Backend, s.opts.Keyer, id, s.opts.TTL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := s.now()
	if e, ok := s.sessions[id]; ok && !fresh {
		e.lastUsed = now
		s.mu.Unlock()
		e.mu.Lock()
		return e, nil
	}
	loc, err := session.NewURLLocation("/?" + query.Encode())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	e := &entry{loc: loc, lastUsed: now}
	e.mu.Lock()
	s.sessions[id] = e
	s.evictLocked(now, id)
	s.mu.Unlock()

	e.sess = session.Open(ctx, session.Options{
		ID:       id,
		Store:    store,
		Location: loc,
		Codec:    s.opts.Codec,
		Defaults: s.opts.Defaults,
		Logger:   s.logger,
	})
	return e, nil
}

// open starts a session for id from query, replacing any previous one. The
// entry is returned locked.
func (s *Server) open(ctx context.Context, id string, query url.Values) (*entry, error) {
	return s.acquire(ctx, id, query, true)
}

// lookup returns the live session for id, locked, opening one from storage
// when the server has none (for example after a restart or eviction).
func (s *Server) lookup(ctx context.Context, id string) (*entry, error) {
	return s.acquire(ctx, id, nil, false)
}

// evictLocked drops idle sessions, then the least recently used ones until
// the registry fits. keep is never dropped. s.mu must be held.
func (s *Server) evictLocked(now time.Time, keep string) {
	for id, e := range s.sessions {
		if id != keep && now.Sub(e.lastUsed) > s.opts.IdleTimeout {
			delete(s.sessions, id)
		}
	}
	for len(s.sessions) > s.opts.MaxSessions {
		oldest := ""
		for id, e := range s.sessions {
			if id == keep {
				continue
			}
			if oldest == "" || e.lastUsed.Before(s.sessions[oldest].lastUsed) {
				oldest = id
			}
		}
		if oldest == "" {
			return
		}
		s.logger.Debug("evicting session", "session", oldest)
		delete(s.sessions, oldest)
	}
}

// peek returns the caller's current state for read-only requests. Clients
// without a cookie get the defaults and no session is registered.
func (s *Server) peek(ctx context.Context, r *http.Request) (state.State, error) {
	id, ok := cookieID(r)
	if !ok {
		if s.opts.Defaults != nil {
			return *s.opts.Defaults, nil
		}
		return state.Defaults(), nil
	}
	e, err := s.lookup(ctx, id)
	if err != nil {
		return state.State{}, err
	}
	defer e.mu.Unlock()
	return e.sess.State(), nil
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
