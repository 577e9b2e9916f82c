package launchstate

import "time"

// LoginState binds an OIDC login initiation to the launch that follows it.
// It is written exactly once and consumed exactly once.
type LoginState struct {
	Nonce     string
	CreatedAt time.Time
}

type Repo interface {
	// Put stores a fresh login state under the given state value.
	Put(state string, loginState *LoginState) error

	// Consume atomically removes and returns the login state for the given
	// state value. It fails if the state is unknown, already consumed, or
	// older than the store's validity window. Two concurrent Consume calls
	// for the same state must yield exactly one success.
	Consume(state string, now time.Time) (*LoginState, error)
}
