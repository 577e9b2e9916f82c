package keys_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

func TestJWKRoundTrip(t *testing.T) {
	keyPair, err := keys.GenerateRSAKeyPair("key-1", 2048)
	require.NoError(t, err)

	jwk, err := keyPair.ToJWK()
	require.NoError(t, err)
	require.Equal(t, "key-1", jwk.Kid)
	require.Equal(t, "RSA", jwk.Kty)
	require.Equal(t, "sig", jwk.Use)
	require.Equal(t, keys.RS256, jwk.Alg)

	publicKey, err := jwk.RSAPublicKey()
	require.NoError(t, err)
	require.Equal(t, keyPair.PublicKey, publicKey)
}

func TestRSAPublicKeyRejectsNonRSAKeys(t *testing.T) {
	jwk := &keys.JWK{Kty: "EC"}
	_, err := jwk.RSAPublicKey()
	require.Error(t, err)

	jwk = &keys.JWK{Kty: "RSA"}
	_, err = jwk.RSAPublicKey()
	require.Error(t, err)
}

func TestKeyByID(t *testing.T) {
	jwks := &keys.JWKS{Keys: []keys.JWK{
		{Kid: "key-1", Kty: "RSA"},
		{Kid: "key-2", Kty: "RSA"},
	}}

	jwk, ok := jwks.KeyByID("key-2")
	require.True(t, ok)
	require.Equal(t, "key-2", jwk.Kid)

	_, ok = jwks.KeyByID("key-3")
	require.False(t, ok)
}

func TestSignerSetsKidHeader(t *testing.T) {
	keyPair, err := keys.GenerateRSAKeyPair("key-1", 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(keyPair)

	signed, err := signer.Sign(jwt.MapClaims{"sub": "u42"})
	require.NoError(t, err)

	token, _, err := jwt.NewParser().ParseUnverified(signed, jwt.MapClaims{})
	require.NoError(t, err)
	require.Equal(t, "key-1", token.Header["kid"])
	require.Equal(t, keys.RS256, token.Header["alg"])
}

func TestPEMRoundTrip(t *testing.T) {
	keyPair, err := keys.GenerateRSAKeyPair("key-1", 2048)
	require.NoError(t, err)

	pemData, err := keyPair.ExportPrivateKeyPEM()
	require.NoError(t, err)

	loaded, err := keys.LoadKeyPairFromPEM("key-1", pemData)
	require.NoError(t, err)
	require.Equal(t, keyPair.PublicKey, loaded.PublicKey)
	require.Equal(t, keys.RS256, loaded.Algorithm)

	// The reloaded key must produce tokens the original public key verifies.
	signed, err := keys.NewKeyPairSigner(loaded).Sign(jwt.MapClaims{"sub": "u42"})
	require.NoError(t, err)
	_, err = jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return keyPair.PublicKey, nil
	}, jwt.WithValidMethods([]string{keys.RS256}))
	require.NoError(t, err)
}
