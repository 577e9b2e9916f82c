package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// LTI handshake
	s.RegisterRouteFunc("GET "+RouteLTILogin, ChainMiddleware(s.LTILoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLTILaunch, ChainMiddleware(s.LTILaunchHandler(), s.LaunchMiddleware()...))

	// Tool registration surface for platforms
	s.RegisterRouteFunc("GET "+RouteLTIJWKS, ChainMiddleware(s.JWKSHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteLTIConfig, ChainMiddleware(s.ToolConfigHandler(), s.APIMiddleware()...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
}
