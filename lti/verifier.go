package lti

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti/keyset"
	"github.com/1rychv/blunote-lti-chatkit/lti/launchstate"
	"github.com/1rychv/blunote-lti-chatkit/platforms"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

// KeyProviderFactory returns the key material provider for a platform.
// The server caches providers per issuer so the short JWKS cache survives
// across launches.
type KeyProviderFactory func(platform *platforms.Platform) keyset.Provider

// Verifier validates launch assertions. Every gate is hard: the first failure
// aborts the launch and no partial session is ever produced.
type Verifier struct {
	platforms    platforms.Repo
	states       launchstate.Repo
	keyProviders KeyProviderFactory
	now          func() time.Time
}

// NewVerifier wires a launch verifier against the platform registry, the
// state store and a key provider factory.
func NewVerifier(platformRepo platforms.Repo, states launchstate.Repo, keyProviders KeyProviderFactory) *Verifier {
	return &Verifier{
		platforms:    platformRepo,
		states:       states,
		keyProviders: keyProviders,
		now:          time.Now,
	}
}

// Verify validates the raw assertion and the state returned alongside it and
// returns the validated claim set. The raw token never leaves this method.
//
// The login state entry is consumed exactly once, after the signature holds,
// so an attacker cannot burn a victim's pending state with garbage tokens.
func (v *Verifier) Verify(ctx context.Context, rawToken, state string) (*LaunchClaims, error) {
	// Gate 1: structural decode of the unverified token to learn the key id
	// and the claimed issuer. Nothing here is trusted yet.
	unverified, _, err := jwt.NewParser().ParseUnverified(rawToken, &LaunchClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "%v", err)
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "header missing kid")
	}
	claimedIssuer := unverified.Claims.(*LaunchClaims).Issuer

	platform, err := v.platforms.Get(claimedIssuer)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidAssertion, "issuer %q not registered", claimedIssuer)
	}

	// Gate 2: resolve the signing key. Keys rotate, so an unknown kid gets
	// one cache-bypassing refetch before the launch is rejected.
	provider := v.keyProviders(platform)
	publicKey, err := v.resolveKey(ctx, provider, kid)
	if err != nil {
		return nil, err
	}

	// Gate 3: signature plus registered claims in one pass. Audience must be
	// the client id the platform assigned us, issuer must be the registered
	// platform, the token must be unexpired and not used before its iat.
	claims := &LaunchClaims{}
	_, err = jwt.ParseWithClaims(rawToken, claims,
		func(token *jwt.Token) (any, error) { return publicKey, nil },
		jwt.WithValidMethods([]string{keys.RS256}),
		jwt.WithAudience(platform.ClientID),
		jwt.WithIssuer(platform.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "%v", err)
		}
		// The wrapped reason stays in server logs; end users only ever see a
		// generic sign-in failure.
		return nil, apperrors.Wrapf(apperrors.ErrInvalidAssertion, "%v", err)
	}

	// Gate 4: bind the launch to its login. Consume is atomic, so a replayed
	// or double-submitted state loses here no matter how the requests race.
	loginState, err := v.states.Consume(state, v.now())
	if err != nil {
		return nil, err
	}
	if claims.Nonce == "" || claims.Nonce != loginState.Nonce {
		return nil, apperrors.Wrapf(apperrors.ErrReplayOrUnknownState, "nonce mismatch")
	}

	// Gate 5: LTI claim completeness.
	if err := claims.CheckRequired(); err != nil {
		return nil, err
	}

	return claims, nil
}

func (v *Verifier) resolveKey(ctx context.Context, provider keyset.Provider, kid string) (any, error) {
	jwks, err := provider.KeySet(ctx)
	if err != nil {
		return nil, err
	}

	jwk, ok := jwks.KeyByID(kid)
	if !ok {
		// Commonly key rotation lag: retry once with a fresh fetch, never more.
		jwks, err = provider.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		if jwk, ok = jwks.KeyByID(kid); !ok {
			return nil, apperrors.Wrapf(apperrors.ErrUnknownKey, "kid %q", kid)
		}
	}

	publicKey, err := jwk.RSAPublicKey()
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnknownKey, "kid %q unusable: %v", kid, err)
	}
	return publicKey, nil
}
