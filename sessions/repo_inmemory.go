package sessions

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*lti.Session
	now      func() time.Time
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*lti.Session),
		now:      time.Now,
	}
}

var _ Repo = (*InMemoryRepo)(nil)

// Upsert stores a session keyed by its session id
func (r *InMemoryRepo) Upsert(sessionID string, session *lti.Session) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	if session == nil {
		return errors.New("session cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[sessionID] = &copied
	return nil
}

// Get retrieves a live session. Expired sessions are treated as gone.
func (r *InMemoryRepo) Get(sessionID string) (*lti.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if session.Expired(r.now()) {
		return nil, apperrors.ErrSessionExpired
	}

	copied := *session
	return &copied, nil
}

// Delete removes a session
func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}
