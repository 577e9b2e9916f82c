package platforms

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Discover fills a platform's authorization and key set endpoints from its
// OIDC discovery document. Endpoints that were configured explicitly are kept;
// discovery only supplies the blanks. Platforms that publish no discovery
// document must be configured with explicit endpoints instead.
func Discover(ctx context.Context, platform *Platform) error {
	if platform.AuthLoginURL != "" && platform.JWKSURL != "" {
		return nil
	}

	provider, err := oidc.NewProvider(ctx, platform.Issuer)
	if err != nil {
		return fmt.Errorf("OIDC discovery for %q failed: %w", platform.Issuer, err)
	}

	var endpoint oauth2.Endpoint = provider.Endpoint()
	if platform.AuthLoginURL == "" {
		platform.AuthLoginURL = endpoint.AuthURL
	}

	if platform.JWKSURL == "" {
		var discovered struct {
			JWKSURI string `json:"jwks_uri"`
		}
		if err := provider.Claims(&discovered); err != nil {
			return fmt.Errorf("failed to read discovery claims for %q: %w", platform.Issuer, err)
		}
		platform.JWKSURL = discovered.JWKSURI
	}

	if platform.AuthLoginURL == "" || platform.JWKSURL == "" {
		return fmt.Errorf("discovery for %q yielded no usable endpoints", platform.Issuer)
	}
	return nil
}
