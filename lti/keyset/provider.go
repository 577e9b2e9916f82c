package keyset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

// maxJWKSBodySize bounds how much of a key set response is read.
const maxJWKSBodySize = 1 << 20 // 1 MiB

// Provider supplies the public signing keys currently valid for a platform.
// Keys may rotate between login and launch, so verification resolves them
// fresh through this interface rather than caching them at login time.
type Provider interface {
	// KeySet returns the platform's current key set, possibly from a short
	// lived cache.
	KeySet(ctx context.Context) (*keys.JWKS, error)

	// Refresh bypasses the cache and fetches the key set from the platform.
	// Used for the single bounded retry after an unknown key id, which
	// usually means the platform rotated keys after our last fetch.
	Refresh(ctx context.Context) (*keys.JWKS, error)
}

// HTTPProvider fetches a platform JWKS document over HTTP with a bounded
// timeout and caches it for a short TTL.
type HTTPProvider struct {
	url    string
	client *http.Client
	ttl    time.Duration

	mu        sync.Mutex
	cached    *keys.JWKS
	fetchedAt time.Time
}

// NewHTTPProvider creates a provider for the given JWKS URL. The timeout
// bounds each fetch so a slow platform cannot hang launch verification.
func NewHTTPProvider(url string, timeout, cacheTTL time.Duration) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
		ttl:    cacheTTL,
	}
}

var _ Provider = (*HTTPProvider)(nil)

// KeySet returns the cached key set when fresh, otherwise fetches it.
func (p *HTTPProvider) KeySet(ctx context.Context) (*keys.JWKS, error) {
	p.mu.Lock()
	if p.cached != nil && time.Since(p.fetchedAt) < p.ttl {
		cached := p.cached
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// Refresh fetches the key set and replaces the cache on success.
func (p *HTTPProvider) Refresh(ctx context.Context) (*keys.JWKS, error) {
	jwks, err := p.fetch(ctx)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrKeyFetch, "keyset %q: %v", p.url, err)
	}

	p.mu.Lock()
	p.cached = jwks
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	return jwks, nil
}

func (p *HTTPProvider) fetch(ctx context.Context) (*keys.JWKS, error) {
	if p.url == "" {
		return nil, fmt.Errorf("JWKS URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var jwks keys.JWKS
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, fmt.Errorf("malformed key set document: %w", err)
	}
	if len(jwks.Keys) == 0 {
		return nil, fmt.Errorf("key set document contains no keys")
	}

	return &jwks, nil
}
