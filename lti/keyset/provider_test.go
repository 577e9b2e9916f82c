package keyset_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti/keyset"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

func jwksServer(t *testing.T, fetches *atomic.Int32) *httptest.Server {
	t.Helper()

	keyPair, err := keys.GenerateRSAKeyPair("platform-key-1", 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(keyPair)
	jwks, err := signer.GetJWKS()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			fetches.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestKeySetFetch(t *testing.T) {
	server := jwksServer(t, nil)
	provider := keyset.NewHTTPProvider(server.URL, 2*time.Second, time.Minute)

	jwks, err := provider.KeySet(context.Background())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "platform-key-1", jwks.Keys[0].Kid)

	jwk, ok := jwks.KeyByID("platform-key-1")
	require.True(t, ok)

	publicKey, err := jwk.RSAPublicKey()
	require.NoError(t, err)
	require.NotNil(t, publicKey)
}

func TestKeySetUsesCacheWithinTTL(t *testing.T) {
	var fetches atomic.Int32
	server := jwksServer(t, &fetches)
	provider := keyset.NewHTTPProvider(server.URL, 2*time.Second, time.Minute)

	_, err := provider.KeySet(context.Background())
	require.NoError(t, err)
	_, err = provider.KeySet(context.Background())
	require.NoError(t, err)

	require.Equal(t, int32(1), fetches.Load())
}

func TestRefreshBypassesCache(t *testing.T) {
	var fetches atomic.Int32
	server := jwksServer(t, &fetches)
	provider := keyset.NewHTTPProvider(server.URL, 2*time.Second, time.Minute)

	_, err := provider.KeySet(context.Background())
	require.NoError(t, err)
	_, err = provider.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, int32(2), fetches.Load())
}

func TestKeySetServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	provider := keyset.NewHTTPProvider(server.URL, 2*time.Second, time.Minute)

	_, err := provider.KeySet(context.Background())
	require.ErrorIs(t, err, apperrors.ErrKeyFetch)
}

func TestKeySetMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	provider := keyset.NewHTTPProvider(server.URL, 2*time.Second, time.Minute)

	_, err := provider.KeySet(context.Background())
	require.ErrorIs(t, err, apperrors.ErrKeyFetch)
}

func TestKeySetEmptyDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	t.Cleanup(server.Close)

	provider := keyset.NewHTTPProvider(server.URL, 2*time.Second, time.Minute)

	_, err := provider.KeySet(context.Background())
	require.ErrorIs(t, err, apperrors.ErrKeyFetch)
}

func TestKeySetUnreachableHost(t *testing.T) {
	provider := keyset.NewHTTPProvider("http://127.0.0.1:1/jwks.json", 500*time.Millisecond, time.Minute)

	_, err := provider.KeySet(context.Background())
	require.ErrorIs(t, err, apperrors.ErrKeyFetch)
}
