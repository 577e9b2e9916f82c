package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/1rychv/blunote-lti-chatkit/internal/config"
	"github.com/1rychv/blunote-lti-chatkit/internal/metrics"
	"github.com/1rychv/blunote-lti-chatkit/lti"
	"github.com/1rychv/blunote-lti-chatkit/lti/keyset"
	"github.com/1rychv/blunote-lti-chatkit/lti/launchstate"
	"github.com/1rychv/blunote-lti-chatkit/platforms"
	"github.com/1rychv/blunote-lti-chatkit/sessions"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	platforms platforms.Repo
	states    launchstate.Repo
	sessions  sessions.Repo
	initiator *lti.Initiator
	verifier  *lti.Verifier
	signer    *keys.KeyPairSigner
	metrics   *metrics.Metrics

	// Key material providers cached per issuer so the short JWKS cache
	// survives across launches.
	keyProviders     map[string]keyset.Provider
	keyProvidersLock sync.RWMutex
}

func New(config config.Config, platformRepo platforms.Repo, stateRepo launchstate.Repo, sessionRepo sessions.Repo) (*Server, error) {
	s := &Server{
		mux:          http.NewServeMux(),
		config:       config,
		platforms:    platformRepo,
		states:       stateRepo,
		sessions:     sessionRepo,
		metrics:      metrics.New(),
		keyProviders: make(map[string]keyset.Provider),
	}
	s.env = config.GetEnv()

	// Bootstrap: tool signing keys and the default platform registration
	if err := s.InitialiseSystem(config); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	launchURL := config.GetToolURL() + RouteLTILaunch
	s.initiator = lti.NewInitiator(
		stateRepo,
		platformRepo,
		launchURL,
		config.GetPlatformAuthLoginURL(),
		config.GetStateLength(),
		config.GetRequireRegisteredIssuer(),
	)
	s.verifier = lti.NewVerifier(platformRepo, stateRepo, s.keyProviderFor)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// keyProviderFor returns the cached key material provider for a platform,
// creating one on first use. Same pattern as per-tenant OIDC config caching.
func (s *Server) keyProviderFor(platform *platforms.Platform) keyset.Provider {
	s.keyProvidersLock.RLock()
	provider, exists := s.keyProviders[platform.Issuer]
	s.keyProvidersLock.RUnlock()
	if exists {
		return provider
	}

	provider = &timedKeyProvider{
		inner: keyset.NewHTTPProvider(
			platform.JWKSURL,
			s.config.GetKeyFetchTimeout(),
			s.config.GetKeySetCacheTTL(),
		),
		duration: s.metrics.KeyFetchDuration,
	}

	s.keyProvidersLock.Lock()
	s.keyProviders[platform.Issuer] = provider
	s.keyProvidersLock.Unlock()

	return provider
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
