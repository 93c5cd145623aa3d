// Package session owns one live diagram and keeps its persisted forms in sync.
//
// A [Session] resolves its starting state once from the URL, then storage,
// then defaults. Every committed mutation is followed by a save: the state is
// serialized, and when the blob differs from the last one written it is
// stored best-effort and the URL query is rewritten. [Session.Reset] returns
// to defaults, clears storage, strips the state keys from the URL and forgets
// the last written blob so the next save always runs.
//
// Storage and the URL are injected as [Store] and [Location]. Storage
// failures never reach the caller; they are logged, reported to the
// observability hooks and visible in the [Outcome] of a save.
//
// A Session is not safe for concurrent use.
package session

import (
	"bytes"
	"context"
	"io"
	"net/url"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/observability"
	"github.com/matzehuels/tensionlab/pkg/state"
)

// Store persists the blob for one session.
type Store interface {
	// Load returns the stored blob, or nil when there is none.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Clear(ctx context.Context) error
}

// Location is the URL the session mirrors its state into.
type Location interface {
	Query() url.Values
	// SetQuery replaces the query component. It cannot fail.
	SetQuery(q url.Values)
}

// Outcome describes what a save did.
type Outcome int

const (
	// Skipped means the blob matched the last write; no I/O happened.
	Skipped Outcome = iota
	// Written means storage and URL were both updated.
	Written
	// StorageFailed means the URL was updated but the storage write failed.
	StorageFailed
	// Rejected means the state could not be serialized; nothing was written.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case StorageFailed:
		return "storage-failed"
	case Rejected:
		return "rejected"
	default:
		return "skipped"
	}
}

// Options configures a Session.
type Options struct {
	// ID names the session in logs and hooks.
	ID       string
	Store    Store
	Location Location
	// Codec encodes the storage blob. Defaults to JSON.
	Codec state.Codec
	// Defaults replaces the built-in starting diagram.
	Defaults *state.State
	Logger   *log.Logger
}

// Session is a live diagram with change-driven persistence.
type Session struct {
	id       string
	store    Store
	loc      Location
	codec    state.Codec
	defaults state.State
	logger   *log.Logger

	current     state.State
	source      state.Source
	revision    uint64
	lastWritten []byte
}

// Open resolves the starting state and returns the session. It never fails:
// an unreadable store or a malformed URL falls through to the next source.
func Open(ctx context.Context, opts Options) *Session {
	s := &Session{
		id:       opts.ID,
		store:    opts.Store,
		loc:      opts.Location,
		codec:    opts.Codec,
		defaults: state.Defaults(),
		logger:   opts.Logger,
	}
	if s.store == nil {
		s.store = NopStore{}
	}
	if s.loc == nil {
		s.loc = &URLLocation{u: &url.URL{}}
	}
	if s.codec == nil {
		s.codec = state.JSONCodec{}
	}
	if opts.Defaults != nil {
		s.defaults = *opts.Defaults
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	blob, err := s.store.Load(ctx)
	if err != nil {
		s.storageError(ctx, "load", err)
		blob = nil
	}

	r := state.Resolve(s.loc.Query(), blob, s.codec, s.defaults)
	for _, rej := range r.Rejected {
		s.logger.Debug("rejected state source", "session", s.id, "err", rej)
	}
	s.current = r.State
	s.source = r.Source
	s.logger.Debug("resolved state", "session", s.id, "source", r.Source)
	observability.Session().OnResolve(ctx, s.id, r.Source.String())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the live state.
func (s *Session) State() state.State { return s.current }

// Source reports where the starting state came from.
func (s *Session) Source() state.Source { return s.source }

// Revision counts state changes since Open.
func (s *Session) Revision() uint64 { return s.revision }

// View evaluates the live state for one tick.
func (s *Session) View(frame geom.Frame) state.View {
	return state.Evaluate(s.current, frame)
}

// Set replaces the live state without saving, as during a drag.
func (s *Session) Set(next state.State) {
	if next != s.current {
		s.current = next
		s.revision++
	}
}

// Drag moves a point without saving. Call Save when the drag ends.
func (s *Session) Drag(id state.PointID, p geom.Point) {
	s.Set(state.ApplyDrag(s.current, id, p))
}

// Control applies an input change and saves.
func (s *Session) Control(ctx context.Context, c state.Control) Outcome {
	s.Set(state.ApplyControl(s.current, c))
	return s.Save(ctx)
}

// Save persists the live state unless it matches the last write.
func (s *Session) Save(ctx context.Context) Outcome {
	_, blob, err := state.Encode(s.codec, s.current)
	if err != nil {
		s.logger.Warn("state not saved", "session", s.id, "err", err)
		return Rejected
	}
	if s.lastWritten != nil && bytes.Equal(blob, s.lastWritten) {
		observability.Session().OnSaveSkipped(ctx, s.id)
		return Skipped
	}

	outcome := Written
	if err := s.store.Save(ctx, blob); err != nil {
		s.storageError(ctx, "save", err)
		outcome = StorageFailed
	}

	s.loc.SetQuery(state.MergeQuery(s.loc.Query(), s.current))
	s.lastWritten = blob

	if outcome == Written {
		s.logger.Debug("saved state", "session", s.id, "bytes", len(blob))
		observability.Session().OnSave(ctx, s.id, len(blob))
	}
	return outcome
}

// Reset restores the defaults, clears storage and strips the state keys
// from the URL. The next Save always writes.
func (s *Session) Reset(ctx context.Context) {
	s.Set(s.defaults)
	if err := s.store.Clear(ctx); err != nil {
		s.storageError(ctx, "clear", err)
	}
	s.loc.SetQuery(state.StripQuery(s.loc.Query()))
	s.lastWritten = nil
	s.logger.Debug("reset state", "session", s.id)
	observability.Session().OnReset(ctx, s.id)
}

// storageError logs and reports a swallowed storage failure.
func (s *Session) storageError(ctx context.Context, op string, err error) {
	err = errs.Wrap(errs.ErrCodeStorageUnavailable, err, "%s state", op)
	s.logger.Debug("storage failed", "session", s.id, "op", op, "err", err)
	observability.Session().OnStorageError(ctx, s.id, op, err)
}
