package lti

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti/launchstate"
	"github.com/1rychv/blunote-lti-chatkit/platforms"
)

// LoginRequiredParams lists the OIDC third-party login parameters that must be
// present; surfaced in validation error responses.
var LoginRequiredParams = []string{"iss", "login_hint", "target_link_uri", "client_id"}

// LoginRequest carries the parameters of an OIDC third-party initiated login.
// Transient; nothing here outlives the handshake.
type LoginRequest struct {
	Issuer        string
	LoginHint     string
	TargetLinkURI string
	ClientID      string
	DeploymentID  string
	MessageHint   string
}

// Initiator starts the login handshake: it validates the request, records a
// fresh state/nonce pair and produces the platform authorization redirect.
type Initiator struct {
	states                  launchstate.Repo
	platforms               platforms.Repo
	launchURL               string
	fallbackAuthLoginURL    string
	stateLength             int
	requireRegisteredIssuer bool
	now                     func() time.Time
}

// NewInitiator wires a login initiator. launchURL is this tool's launch
// endpoint, the redirect_uri the platform posts the assertion back to.
// fallbackAuthLoginURL is only consulted when issuer registration is not
// required and the issuer is unknown.
func NewInitiator(states launchstate.Repo, platformRepo platforms.Repo, launchURL, fallbackAuthLoginURL string, stateLength int, requireRegisteredIssuer bool) *Initiator {
	return &Initiator{
		states:                  states,
		platforms:               platformRepo,
		launchURL:               launchURL,
		fallbackAuthLoginURL:    fallbackAuthLoginURL,
		stateLength:             stateLength,
		requireRegisteredIssuer: requireRegisteredIssuer,
		now:                     time.Now,
	}
}

// Initiate validates the login request and returns the authorization URL to
// redirect the user to. Exactly one state entry is written per successful
// call; validation failures write nothing.
func (i *Initiator) Initiate(req *LoginRequest) (string, error) {
	if err := validateLoginRequest(req); err != nil {
		return "", err
	}

	authLoginURL, err := i.resolveAuthLoginURL(req.Issuer)
	if err != nil {
		return "", err
	}

	state := generateRandomString(i.stateLength)
	nonce := generateRandomString(i.stateLength)

	if err := i.states.Put(state, &launchstate.LoginState{Nonce: nonce, CreatedAt: i.now()}); err != nil {
		return "", apperrors.Wrapf(err, "failed to store login state")
	}

	authURL, err := url.Parse(authLoginURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorization URL %q: %w", authLoginURL, err)
	}

	params := url.Values{}
	params.Set("scope", "openid")
	params.Set("response_type", "id_token")
	params.Set("response_mode", "form_post")
	params.Set("prompt", "none")
	params.Set("client_id", req.ClientID)
	params.Set("redirect_uri", i.launchURL)
	params.Set("state", state)
	params.Set("nonce", nonce)
	params.Set("login_hint", req.LoginHint)
	if req.MessageHint != "" {
		params.Set("lti_message_hint", req.MessageHint)
	}
	authURL.RawQuery = params.Encode()

	return authURL.String(), nil
}

func validateLoginRequest(req *LoginRequest) error {
	var missing []string
	if req.Issuer == "" {
		missing = append(missing, "iss")
	}
	if req.LoginHint == "" {
		missing = append(missing, "login_hint")
	}
	if req.TargetLinkURI == "" {
		missing = append(missing, "target_link_uri")
	}
	if req.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if len(missing) > 0 {
		return apperrors.Wrapf(apperrors.ErrValidation, "missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// resolveAuthLoginURL maps the issuer onto its authorization endpoint via the
// platform registry. Unregistered issuers are rejected unless the tool was
// explicitly configured to trust any issuer, in which case the fallback
// endpoint is used.
func (i *Initiator) resolveAuthLoginURL(issuer string) (string, error) {
	platform, err := i.platforms.Get(issuer)
	if err != nil {
		if i.requireRegisteredIssuer {
			return "", apperrors.Wrapf(apperrors.ErrPlatformNotFound, "issuer %q", issuer)
		}
		if i.fallbackAuthLoginURL == "" {
			return "", fmt.Errorf("no authorization URL configured for issuer %q", issuer)
		}
		return i.fallbackAuthLoginURL, nil
	}

	if platform.AuthLoginURL == "" {
		return "", fmt.Errorf("platform %q has no authorization URL configured", issuer)
	}
	return platform.AuthLoginURL, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
