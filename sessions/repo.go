package sessions

import (
	"github.com/1rychv/blunote-lti-chatkit/lti"
)

// Repo is the seam between launch verification and the chat/bootstrap layer.
// The launch handler writes exactly one session per verified launch; the
// downstream layer reads it by session id and must trust only what it finds
// here, never identity fields supplied by its own callers.
type Repo interface {
	Upsert(sessionID string, session *lti.Session) error
	Get(sessionID string) (*lti.Session, error)
	Delete(sessionID string) error
}
