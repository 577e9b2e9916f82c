package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/1rychv/blunote-lti-chatkit/internal/config"
	"github.com/1rychv/blunote-lti-chatkit/platforms"
	"github.com/1rychv/blunote-lti-chatkit/token/keys"
)

const toolKeyBits = 2048

// InitialiseSystem prepares the tool's signing keys and seeds the platform
// registry from configuration. Called once at server construction.
func (s *Server) InitialiseSystem(c config.Config) error {
	if err := s.initialiseToolKeys(c); err != nil {
		return err
	}
	if err := s.seedDefaultPlatform(c); err != nil {
		return err
	}

	if !c.GetRequireRegisteredIssuer() {
		log.Warn().Msg("Issuer allow-list disabled: login initiation will trust any issuer the LMS claims")
	}
	return nil
}

// initialiseToolKeys loads the configured private key or generates a fresh
// pair. A generated key changes on restart, which invalidates anything the
// tool previously signed; production deployments should configure a PEM key.
func (s *Server) initialiseToolKeys(c config.Config) error {
	var keyPair *keys.KeyPair
	var err error

	if pemData := c.GetToolPrivateKeyPEM(); pemData != "" {
		keyPair, err = keys.LoadKeyPairFromPEM(c.GetToolKeyID(), pemData)
		if err != nil {
			return fmt.Errorf("failed to load tool key pair: %w", err)
		}
	} else {
		keyPair, err = keys.GenerateRSAKeyPair(c.GetToolKeyID(), toolKeyBits)
		if err != nil {
			return fmt.Errorf("failed to generate tool key pair: %w", err)
		}
		log.Warn().Msg("No LTI_PRIVATE_KEY_PEM configured, generated an ephemeral tool key pair")
	}

	s.signer = keys.NewKeyPairSigner(keyPair)
	return nil
}

// seedDefaultPlatform registers the platform described by PLATFORM_* env vars
// so single-platform deployments need no registration step. Endpoints left
// blank are resolved through OIDC discovery when the platform publishes one.
func (s *Server) seedDefaultPlatform(c config.Config) error {
	issuer := c.GetPlatformIssuer()
	if issuer == "" {
		log.Info().Msg("No default platform configured; registry starts empty")
		return nil
	}

	platform := &platforms.Platform{
		Issuer:       issuer,
		ClientID:     c.GetPlatformClientID(),
		Name:         "default",
		AuthLoginURL: c.GetPlatformAuthLoginURL(),
		JWKSURL:      c.GetPlatformJWKSURL(),
	}

	if platform.AuthLoginURL == "" || platform.JWKSURL == "" {
		ctx, cancel := context.WithTimeout(context.Background(), c.GetKeyFetchTimeout())
		defer cancel()
		if err := platforms.Discover(ctx, platform); err != nil {
			// Launches for this platform fail until its endpoints are
			// configured; startup continues so the rest of the tool serves.
			log.Err(err).Str("iss", issuer).Msg("Platform endpoint discovery failed")
		}
	}

	if err := s.platforms.Upsert(platform); err != nil {
		return fmt.Errorf("failed to register default platform: %w", err)
	}

	log.Info().Str("iss", issuer).Msg("Registered default platform")
	return nil
}
