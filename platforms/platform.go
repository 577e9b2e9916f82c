package platforms

// Platform represents an LMS platform trusted to launch this tool.
// Each platform has its own issuer, client id, authorization endpoint and
// key set URL; the issuer acts as the registry key.
type Platform struct {
	Issuer       string `json:"issuer"`         // Platform issuer URL (e.g., "https://canvas.example.edu")
	ClientID     string `json:"client_id"`      // Client id this platform assigned to the tool
	Name         string `json:"name"`           // Display name, informational only
	AuthLoginURL string `json:"auth_login_url"` // OIDC authorization endpoint
	JWKSURL      string `json:"jwks_url"`       // Public key set endpoint
}
