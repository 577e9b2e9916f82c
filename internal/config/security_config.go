package config

type SecurityConfig interface {
	GetRequireRegisteredIssuer() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetRequireRegisteredIssuer controls whether login initiation rejects issuers
// that are not in the platform registry. Disabling it trusts any issuer the
// LMS claims, which is a known weakening; the server logs a warning at startup
// when it is off.
func (Security) GetRequireRegisteredIssuer() bool {
	return GetEnv("REQUIRE_REGISTERED_ISSUER", "true") != "false"
}
