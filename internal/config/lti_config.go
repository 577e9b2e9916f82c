package config

import "time"

type LTIConfig interface {
	GetPlatformIssuer() string
	GetPlatformClientID() string
	GetPlatformAuthLoginURL() string
	GetPlatformJWKSURL() string
	GetToolKeyID() string
	GetToolPrivateKeyPEM() string
	GetStateLength() int
	GetLoginStateTimeout() time.Duration
	GetSessionValidity() time.Duration
	GetKeyFetchTimeout() time.Duration
	GetKeySetCacheTTL() time.Duration
}

type LTI struct{}

var _ LTIConfig = LTI{}

// GetPlatformIssuer returns the issuer of the default registered platform.
func (LTI) GetPlatformIssuer() string {
	return GetEnv("PLATFORM_ISSUER", "")
}

// GetPlatformClientID returns the client id the platform assigned to this tool.
func (LTI) GetPlatformClientID() string {
	return GetEnv("PLATFORM_CLIENT_ID", "")
}

// GetPlatformAuthLoginURL returns the platform's OIDC authorization endpoint.
// May be left empty when the platform supports OIDC discovery.
func (LTI) GetPlatformAuthLoginURL() string {
	return GetEnv("PLATFORM_AUTH_LOGIN_URL", "")
}

// GetPlatformJWKSURL returns the platform's public key set endpoint.
// May be left empty when the platform supports OIDC discovery.
func (LTI) GetPlatformJWKSURL() string {
	return GetEnv("PLATFORM_JWKS_URL", "")
}

func (LTI) GetToolKeyID() string {
	return GetEnv("LTI_KID", "blunote-lti-key-1")
}

// GetToolPrivateKeyPEM returns the PEM encoded RSA private key used for the
// tool's published JWKS. When empty a fresh key pair is generated at startup.
func (LTI) GetToolPrivateKeyPEM() string {
	return GetEnv("LTI_PRIVATE_KEY_PEM", "")
}

func (LTI) GetStateLength() int {
	return 32 // 32 bytes = 256 bits
}

func (LTI) GetLoginStateTimeout() time.Duration {
	return 10 * time.Minute
}

func (LTI) GetSessionValidity() time.Duration {
	return 24 * time.Hour
}

func (LTI) GetKeyFetchTimeout() time.Duration {
	return 5 * time.Second
}

func (LTI) GetKeySetCacheTTL() time.Duration {
	return 5 * time.Minute
}
