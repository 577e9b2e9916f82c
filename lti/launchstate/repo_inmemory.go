package launchstate

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// Entries expire after the configured timeout even when never consumed, which
// bounds both memory growth and the replay window.
type InMemoryRepo struct {
	mu      sync.Mutex
	states  map[string]*LoginState
	timeout time.Duration
}

// NewInMemoryRepo creates a new in-memory login state repository. Entries
// older than timeout are rejected by Consume and swept by the janitor.
func NewInMemoryRepo(timeout time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		states:  make(map[string]*LoginState),
		timeout: timeout,
	}
}

var _ Repo = (*InMemoryRepo)(nil)

// Put stores a login state
func (r *InMemoryRepo) Put(state string, loginState *LoginState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if loginState == nil {
		return errors.New("loginState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to prevent external modifications
	r.states[state] = &LoginState{
		Nonce:     loginState.Nonce,
		CreatedAt: loginState.CreatedAt,
	}

	return nil
}

// Consume removes and returns a login state in a single critical section, so
// concurrent attempts on the same state value see exactly one winner.
func (r *InMemoryRepo) Consume(state string, now time.Time) (*LoginState, error) {
	if state == "" {
		return nil, apperrors.ErrReplayOrUnknownState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	loginState, exists := r.states[state]
	if !exists {
		return nil, apperrors.ErrReplayOrUnknownState
	}

	// Single use, even when the entry turns out to be expired
	delete(r.states, state)

	if now.Sub(loginState.CreatedAt) > r.timeout {
		return nil, apperrors.ErrReplayOrUnknownState
	}

	return &LoginState{
		Nonce:     loginState.Nonce,
		CreatedAt: loginState.CreatedAt,
	}, nil
}

// StartJanitor sweeps expired entries every interval until ctx is cancelled.
// Consume already rejects stale entries; the janitor only reclaims memory for
// logins that never came back as launches.
func (r *InMemoryRepo) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.sweep(now)
			}
		}
	}()
}

func (r *InMemoryRepo) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for state, loginState := range r.states {
		if now.Sub(loginState.CreatedAt) > r.timeout {
			delete(r.states, state)
		}
	}
}

// Len reports the number of live entries. Used by tests and metrics.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
