package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/1rychv/blunote-lti-chatkit/internal/config"
	"github.com/1rychv/blunote-lti-chatkit/lti"
	"github.com/1rychv/blunote-lti-chatkit/lti/launchstate"
	"github.com/1rychv/blunote-lti-chatkit/platforms"
	"github.com/1rychv/blunote-lti-chatkit/server"
	"github.com/1rychv/blunote-lti-chatkit/sessions"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

const (
	testIssuer        = "https://lms.example"
	testClientID      = "c1"
	testPlatformKeyID = "platform-key-1"
	instructorRoleURI = "http://purl.imsglobal.org/vocab/lis/v2/membership#Instructor"
)

var sessionIDPattern = regexp.MustCompile(`"sessionId":"(lti_[^"]+)"`)

type serverFixture struct {
	srv      *server.Server
	signer   *keys.KeyPairSigner
	states   *launchstate.InMemoryRepo
	sessions *sessions.InMemoryRepo
}

// newServerFixture stands up a full server wired against an in-process
// platform: a JWKS endpoint plus a signer playing the LMS side.
func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	keyPair, err := keys.GenerateRSAKeyPair(testPlatformKeyID, 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(keyPair)

	jwks, err := signer.GetJWKS()
	require.NoError(t, err)
	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(jwksServer.Close)

	t.Setenv("ENV", "test")
	t.Setenv("PLATFORM_ISSUER", testIssuer)
	t.Setenv("PLATFORM_CLIENT_ID", testClientID)
	t.Setenv("PLATFORM_AUTH_LOGIN_URL", testIssuer+"/api/lti/authorize_redirect")
	t.Setenv("PLATFORM_JWKS_URL", jwksServer.URL)

	c := config.New()
	platformRepo := platforms.NewInMemoryRepo()
	stateRepo := launchstate.NewInMemoryRepo(c.GetLoginStateTimeout())
	sessionRepo := sessions.NewInMemoryRepo()

	srv, err := server.New(c, platformRepo, stateRepo, sessionRepo)
	require.NoError(t, err)

	return &serverFixture{
		srv:      srv,
		signer:   signer,
		states:   stateRepo,
		sessions: sessionRepo,
	}
}

// initiateLogin runs the login initiation leg and returns the state and nonce
// the platform would carry through the authorization redirect.
func (f *serverFixture) initiateLogin(t *testing.T) (state, nonce string) {
	t.Helper()

	query := url.Values{}
	query.Set("iss", testIssuer)
	query.Set("login_hint", "u42")
	query.Set("target_link_uri", "http://localhost:4000/lti/launch")
	query.Set("client_id", testClientID)

	req := httptest.NewRequest(http.MethodGet, server.RouteLTILogin+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	redirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "lms.example", redirect.Host)
	require.Equal(t, "/api/lti/authorize_redirect", redirect.Path)

	params := redirect.Query()
	require.Equal(t, "openid", params.Get("scope"))
	require.Equal(t, "id_token", params.Get("response_type"))
	require.Equal(t, "form_post", params.Get("response_mode"))
	require.NotEmpty(t, params.Get("state"))
	require.NotEmpty(t, params.Get("nonce"))

	return params.Get("state"), params.Get("nonce")
}

func (f *serverFixture) mintAssertion(t *testing.T, nonce string) string {
	t.Helper()

	now := time.Now()
	token, err := f.signer.Sign(jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "u42",
		"iat":   now.Unix(),
		"exp":   now.Add(5 * time.Minute).Unix(),
		"nonce": nonce,
		"name":  "Ada Lovelace",
		"email": "ada@example.edu",
		"https://purl.imsglobal.org/spec/lti/claim/message_type":  lti.MessageTypeResourceLink,
		"https://purl.imsglobal.org/spec/lti/claim/version":       lti.Version13,
		"https://purl.imsglobal.org/spec/lti/claim/deployment_id": "dep-1",
		"https://purl.imsglobal.org/spec/lti/claim/resource_link": map[string]any{"id": "rl-1"},
		"https://purl.imsglobal.org/spec/lti/claim/roles":         []string{instructorRoleURI},
		"https://purl.imsglobal.org/spec/lti/claim/context":       map[string]any{"id": "course9", "title": "Algorithms"},
	})
	require.NoError(t, err)
	return token
}

func (f *serverFixture) postLaunch(idToken, state string) *httptest.ResponseRecorder {
	form := url.Values{}
	if idToken != "" {
		form.Set("id_token", idToken)
	}
	if state != "" {
		form.Set("state", state)
	}

	req := httptest.NewRequest(http.MethodPost, server.RouteLTILaunch, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func TestLaunchRoundTrip(t *testing.T) {
	f := newServerFixture(t)

	state, nonce := f.initiateLogin(t)
	idToken := f.mintAssertion(t, nonce)

	rec := f.postLaunch(idToken, state)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	require.Contains(t, body, "Algorithms")

	match := sessionIDPattern.FindStringSubmatch(body)
	require.Len(t, match, 2, "bootstrap payload must carry the session id")
	sessionID := match[1]

	session, err := f.sessions.Get(sessionID)
	require.NoError(t, err)
	require.Equal(t, "u42", session.UserID)
	require.Equal(t, "Ada Lovelace", session.UserName)
	require.Equal(t, "course9", session.CourseID)
	require.Equal(t, "Algorithms", session.CourseName)
	require.Equal(t, []lti.Role{lti.RoleInstructor}, session.Roles)
	require.Equal(t, testIssuer, session.PlatformIssuer)
	require.Equal(t, "dep-1", session.DeploymentID)
	require.Equal(t, 24*time.Hour, session.ExpiresAt.Sub(session.CreatedAt))
}

func TestLaunchReplayIsRejected(t *testing.T) {
	f := newServerFixture(t)

	state, nonce := f.initiateLogin(t)
	idToken := f.mintAssertion(t, nonce)

	rec := f.postLaunch(idToken, state)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same assertion and state again: the state was consumed the first time.
	rec = f.postLaunch(idToken, state)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid LTI launch")
}

func TestLaunchWithForgedAssertion(t *testing.T) {
	f := newServerFixture(t)

	state, nonce := f.initiateLogin(t)

	rogueKeyPair, err := keys.GenerateRSAKeyPair(testPlatformKeyID, 2048)
	require.NoError(t, err)
	rogue := &serverFixture{signer: keys.NewKeyPairSigner(rogueKeyPair)}
	idToken := rogue.mintAssertion(t, nonce)

	rec := f.postLaunch(idToken, state)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid LTI launch")

	// The rejected launch must not leave a session behind.
	require.NotContains(t, rec.Body.String(), "sessionId")
}

func TestLaunchMissingParameters(t *testing.T) {
	f := newServerFixture(t)

	rec := f.postLaunch("", "some-state")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postLaunch("some-token", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLaunchKeyFetchOutage(t *testing.T) {
	keyPair, err := keys.GenerateRSAKeyPair(testPlatformKeyID, 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(keyPair)

	t.Setenv("ENV", "test")
	t.Setenv("PLATFORM_ISSUER", testIssuer)
	t.Setenv("PLATFORM_CLIENT_ID", testClientID)
	t.Setenv("PLATFORM_AUTH_LOGIN_URL", testIssuer+"/api/lti/authorize_redirect")
	t.Setenv("PLATFORM_JWKS_URL", "http://127.0.0.1:1/jwks.json")

	c := config.New()
	f := &serverFixture{
		signer:   signer,
		states:   launchstate.NewInMemoryRepo(c.GetLoginStateTimeout()),
		sessions: sessions.NewInMemoryRepo(),
	}
	f.srv, err = server.New(c, platforms.NewInMemoryRepo(), f.states, f.sessions)
	require.NoError(t, err)

	state, nonce := f.initiateLogin(t)
	rec := f.postLaunch(f.mintAssertion(t, nonce), state)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "Sign-in temporarily unavailable")
}

func TestLoginMissingParameters(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteLTILogin+"?iss="+url.QueryEscape(testIssuer), nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error    string   `json:"error"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Missing required OIDC parameters", body.Error)
	require.Equal(t, lti.LoginRequiredParams, body.Required)

	// No pending state may be recorded for a rejected initiation.
	require.Equal(t, 0, f.states.Len())
}

func TestLoginFromUnregisteredIssuer(t *testing.T) {
	f := newServerFixture(t)

	query := url.Values{}
	query.Set("iss", "https://rogue.example")
	query.Set("login_hint", "u42")
	query.Set("target_link_uri", "http://localhost:4000/lti/launch")
	query.Set("client_id", testClientID)

	req := httptest.NewRequest(http.MethodGet, server.RouteLTILogin+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Unknown platform issuer")
}

func TestToolJWKSEndpoint(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteLTIJWKS, nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var jwks keys.JWKS
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "blunote-lti-key-1", jwks.Keys[0].Kid)
	require.Equal(t, "RSA", jwks.Keys[0].Kty)
	require.Equal(t, keys.RS256, jwks.Keys[0].Alg)
}

func TestToolConfigEndpoint(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteLTIConfig, nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "BluNote Assistant", body["title"])
	require.Contains(t, body["oidc_initiation_url"], server.RouteLTILogin)
	require.Contains(t, body["public_jwk_url"], server.RouteLTIJWKS)
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteHealth, nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newServerFixture(t)

	state, nonce := f.initiateLogin(t)
	rec := f.postLaunch(f.mintAssertion(t, nonce), state)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, server.RouteMetrics, nil)
	metricsRec := httptest.NewRecorder()
	f.srv.ServeHTTP(metricsRec, req)

	require.Equal(t, http.StatusOK, metricsRec.Code)
	body := metricsRec.Body.String()
	require.Contains(t, body, "blunote_lti_logins_initiated_total 1")
	require.Contains(t, body, "blunote_lti_launches_succeeded_total 1")
}
