// Package session persists explorer sessions: the filter state a client
// has built up through controller actions.
//
// Four [Store] backends are provided:
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [FileStore]: JSON files, for the CLI and local servers
//   - [RedisStore]: shared storage for multi-instance deployments
//   - [MongoStore]: document storage with a TTL index
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess := session.New(filter.State{}, "sha256:...", session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/lineageview/pkg/filter"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session stores one explorer's filter state.
type Session struct {
	ID string `json:"id" bson:"_id"`
	// Digest is the metadata digest the state was built against.
	Digest    string          `json:"digest,omitempty" bson:"digest,omitempty"`
	State     filter.Snapshot `json:"state" bson:"state"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at" bson:"expires_at"`
}

// New creates a session with a random UUID.
func New(st filter.State, digest string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Digest:    digest,
		State:     st.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// FilterState returns the stored state.
func (s *Session) FilterState() filter.State {
	return s.State.State()
}

// Update replaces the stored state and extends the expiration by ttl.
func (s *Session) Update(st filter.State, ttl time.Duration) {
	now := time.Now().UTC()
	s.State = st.Snapshot()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// ValidateID reports whether id is a well-formed session id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native expiration).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
