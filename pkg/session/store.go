package session

import (
	"context"
	"net/url"
	"sync"
	"time"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/storage"
)

// DefaultTTL is how long a stored blob lives on backends that expire keys.
const DefaultTTL = 30 * 24 * time.Hour

// BackendStore keeps a session's blob in a storage backend.
type BackendStore struct {
	backend storage.Backend
	key     string
	ttl     time.Duration
}

// NewBackendStore binds sessionID to its key in backend. A nil keyer uses
// storage.DefaultKeyer.
func NewBackendStore(backend storage.Backend, keyer storage.Keyer, sessionID string, ttl time.Duration) (*BackendStore, error) {
	if err := errs.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if keyer == nil {
		keyer = storage.NewDefaultKeyer()
	}
	return &BackendStore{backend: backend, key: keyer.StateKey(sessionID), ttl: ttl}, nil
}

// Key returns the storage key of the blob.
func (s *BackendStore) Key() string { return s.key }

func (s *BackendStore) Load(ctx context.Context) ([]byte, error) {
	data, hit, err := s.backend.Get(ctx, s.key)
	if err != nil || !hit {
		return nil, err
	}
	return data, nil
}

func (s *BackendStore) Save(ctx context.Context, blob []byte) error {
	return s.backend.Set(ctx, s.key, blob, s.ttl)
}

func (s *BackendStore) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key)
}

var _ Store = (*BackendStore)(nil)

// NopStore stores nothing.
type NopStore struct{}

func (NopStore) Load(context.Context) ([]byte, error) { return nil, nil }
func (NopStore) Save(context.Context, []byte) error   { return nil }
func (NopStore) Clear(context.Context) error          { return nil }

// URLLocation is an in-memory URL, the address a shell shows for the diagram.
type URLLocation struct {
	mu sync.RWMutex
	u  *url.URL
}

// NewURLLocation parses raw as the starting address.
func NewURLLocation(raw string) (*URLLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse url")
	}
	return &URLLocation{u: u}, nil
}

// Query returns a copy of the current query parameters.
func (l *URLLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.Query()
}

// SetQuery replaces the query component.
func (l *URLLocation) SetQuery(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.u.RawQuery = q.Encode()
}

// String returns the full address.
func (l *URLLocation) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.String()
}

var _ Location = (*URLLocation)(nil)
