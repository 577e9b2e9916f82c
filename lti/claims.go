package lti

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
)

// LTI 1.3 message constants
const (
	MessageTypeResourceLink = "LtiResourceLinkRequest"
	Version13               = "1.3.0"
)

// ResourceLink identifies the placement the launch originated from.
type ResourceLink struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Context describes the course the launch happened in. Optional; launches
// from account-level placements carry no context.
type Context struct {
	ID    string   `json:"id"`
	Label string   `json:"label,omitempty"`
	Title string   `json:"title,omitempty"`
	Type  []string `json:"type,omitempty"`
}

// LaunchPresentation carries hints about how the platform embeds the tool.
type LaunchPresentation struct {
	DocumentTarget string `json:"document_target,omitempty"`
	ReturnURL      string `json:"return_url,omitempty"`
	Locale         string `json:"locale,omitempty"`
}

// LaunchClaims is the typed claim set of an LTI 1.3 launch assertion.
// Every field is extracted explicitly so a missing or renamed claim fails
// loudly instead of silently yielding a zero value.
type LaunchClaims struct {
	jwt.RegisteredClaims

	Nonce string `json:"nonce"`

	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Email      string `json:"email,omitempty"`

	MessageType        string              `json:"https://purl.imsglobal.org/spec/lti/claim/message_type"`
	Version            string              `json:"https://purl.imsglobal.org/spec/lti/claim/version"`
	DeploymentID       string              `json:"https://purl.imsglobal.org/spec/lti/claim/deployment_id"`
	TargetLinkURI      string              `json:"https://purl.imsglobal.org/spec/lti/claim/target_link_uri,omitempty"`
	ResourceLink       *ResourceLink       `json:"https://purl.imsglobal.org/spec/lti/claim/resource_link"`
	Roles              []string            `json:"https://purl.imsglobal.org/spec/lti/claim/roles"`
	Context            *Context            `json:"https://purl.imsglobal.org/spec/lti/claim/context,omitempty"`
	LaunchPresentation *LaunchPresentation `json:"https://purl.imsglobal.org/spec/lti/claim/launch_presentation,omitempty"`
}

// CheckRequired confirms the LTI-specific claims a resource link launch must
// carry. Signature, issuer, audience, expiry and nonce are validated earlier
// by the verifier; this gate only covers claim presence.
func (c *LaunchClaims) CheckRequired() error {
	var missing []string

	if c.Subject == "" {
		missing = append(missing, "sub")
	}
	if c.MessageType == "" {
		missing = append(missing, "message_type")
	}
	if c.Version == "" {
		missing = append(missing, "version")
	}
	if c.DeploymentID == "" {
		missing = append(missing, "deployment_id")
	}
	if c.ResourceLink == nil || c.ResourceLink.ID == "" {
		missing = append(missing, "resource_link")
	}
	if c.Roles == nil {
		missing = append(missing, "roles")
	}

	if len(missing) > 0 {
		return apperrors.Wrapf(apperrors.ErrIncompleteAssertion, "missing claims: %s", strings.Join(missing, ", "))
	}
	return nil
}
