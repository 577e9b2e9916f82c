package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti"
)

// Generic bodies for rejected launches. The discriminated failure reason is
// only ever written to the server log.
const (
	launchRejectedMessage    = "Invalid LTI launch"
	launchUnavailableMessage = "Sign-in temporarily unavailable"
)

// LTILaunchHandler receives the platform's form_post back to the tool:
// the signed assertion plus the state from the matching login initiation.
// On success it stores the verified session and renders the bootstrap page.
func (s *Server) LTILaunchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idToken := r.FormValue("id_token")
		state := r.FormValue("state")

		if idToken == "" || state == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing id_token or state parameter")
			return
		}

		claims, err := s.verifier.Verify(r.Context(), idToken, state)
		if err != nil {
			kind := launchFailureKind(err)
			s.metrics.LaunchFailures.WithLabelValues(kind).Inc()
			log.Err(err).Str("kind", kind).Msg("LTI launch failed")

			if apperrors.Is(err, apperrors.ErrKeyFetch) {
				// Transient; the LMS may retry the whole launch once.
				writeJSONError(w, http.StatusServiceUnavailable, launchUnavailableMessage)
				return
			}
			writeJSONError(w, http.StatusUnauthorized, launchRejectedMessage)
			return
		}

		roles := lti.NormalizeRoles(claims.Roles)
		session := lti.NewSession(claims, roles, time.Now(), s.config.GetSessionValidity())

		if err := s.sessions.Upsert(session.SessionID, session); err != nil {
			log.Err(err).Msg("Failed to store verified session")
			writeJSONError(w, http.StatusInternalServerError, "Failed to create session")
			return
		}

		s.metrics.LaunchesSucceeded.Inc()
		log.Info().
			Str("user_id", session.UserID).
			Str("course_id", session.CourseID).
			Msg("LTI launch successful")

		s.renderLaunchPage(w, session)
	}
}

// launchFailureKind labels a verification failure for metrics and logs.
func launchFailureKind(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrMalformedToken):
		return "malformed_token"
	case apperrors.Is(err, apperrors.ErrKeyFetch):
		return "key_fetch"
	case apperrors.Is(err, apperrors.ErrUnknownKey):
		return "unknown_key"
	case apperrors.Is(err, apperrors.ErrReplayOrUnknownState):
		return "replay_or_unknown_state"
	case apperrors.Is(err, apperrors.ErrIncompleteAssertion):
		return "incomplete_assertion"
	case apperrors.Is(err, apperrors.ErrInvalidAssertion):
		return "invalid_assertion"
	default:
		return "internal"
	}
}
