package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// LTI Routes
	RouteLTILogin  = "/lti/oidc/login"
	RouteLTILaunch = "/lti/launch"
	RouteLTIJWKS   = "/lti/.well-known/jwks.json"
	RouteLTIConfig = "/lti/config"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
