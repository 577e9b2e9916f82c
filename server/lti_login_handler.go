package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti"
)

// LTILoginHandler handles OIDC login initiation from the LMS. On success it
// redirects the browser to the platform's authorization endpoint with a fresh
// state/nonce pair already recorded.
func (s *Server) LTILoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		deploymentID := q.Get("lti_deployment_id")
		if deploymentID == "" {
			deploymentID = q.Get("deployment_id")
		}

		req := &lti.LoginRequest{
			Issuer:        q.Get("iss"),
			LoginHint:     q.Get("login_hint"),
			TargetLinkURI: q.Get("target_link_uri"),
			ClientID:      q.Get("client_id"),
			DeploymentID:  deploymentID,
			MessageHint:   q.Get("lti_message_hint"),
		}

		authURL, err := s.initiator.Initiate(req)
		switch {
		case err == nil:
		case apperrors.Is(err, apperrors.ErrValidation):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":    "Missing required OIDC parameters",
				"required": lti.LoginRequiredParams,
			})
			return
		case apperrors.Is(err, apperrors.ErrPlatformNotFound):
			log.Warn().Str("iss", req.Issuer).Msg("OIDC login from unregistered platform rejected")
			writeJSONError(w, http.StatusBadRequest, "Unknown platform issuer")
			return
		default:
			log.Err(err).Str("iss", req.Issuer).Msg("OIDC login initiation failed")
			writeJSONError(w, http.StatusInternalServerError, "Platform authentication URL not configured")
			return
		}

		s.metrics.LoginsInitiated.Inc()
		log.Info().Str("iss", req.Issuer).Str("client_id", req.ClientID).Msg("OIDC login initiated")

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}
