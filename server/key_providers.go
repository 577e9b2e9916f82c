package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/1rychv/blunote-lti-chatkit/lti/keyset"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

// timedKeyProvider records fetch latency around a key material provider.
type timedKeyProvider struct {
	inner    keyset.Provider
	duration prometheus.Histogram
}

var _ keyset.Provider = (*timedKeyProvider)(nil)

func (p *timedKeyProvider) KeySet(ctx context.Context) (*keys.JWKS, error) {
	start := time.Now()
	jwks, err := p.inner.KeySet(ctx)
	p.duration.Observe(time.Since(start).Seconds())
	return jwks, err
}

func (p *timedKeyProvider) Refresh(ctx context.Context) (*keys.JWKS, error) {
	start := time.Now()
	jwks, err := p.inner.Refresh(ctx)
	p.duration.Observe(time.Since(start).Seconds())
	return jwks, err
}
