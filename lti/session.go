package lti

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel values used when a launch carries no context claim. Downstream
// consumers must treat these as "no course scoping available", not as a course.
const (
	UnknownCourseID   = "unknown"
	DefaultCourseName = "Course"
	DefaultUserName   = "User"
)

// Session is the trusted output of a verified launch. Everything in it comes
// from validated claims; downstream layers must never trust identity fields
// supplied by the client directly.
type Session struct {
	SessionID      string    `json:"sessionId"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail,omitempty"`
	CourseID       string    `json:"courseId"`
	CourseName     string    `json:"courseName"`
	Roles          []Role    `json:"roles"`
	PlatformIssuer string    `json:"platformIssuer"`
	DeploymentID   string    `json:"deploymentId"`
	ResourceLinkID string    `json:"resourceLinkId"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its validity window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// NewSession materializes a session from validated claims and a normalized
// role set. The expiry is a design constant counted from creation; the
// assertion's own exp only gated acceptance, it does not shape the session.
func NewSession(claims *LaunchClaims, roles []Role, now time.Time, validity time.Duration) *Session {
	session := &Session{
		SessionID:      fmt.Sprintf("lti_%s", uuid.NewString()),
		UserID:         claims.Subject,
		UserName:       displayName(claims),
		UserEmail:      claims.Email,
		CourseID:       UnknownCourseID,
		CourseName:     DefaultCourseName,
		Roles:          roles,
		PlatformIssuer: claims.Issuer,
		DeploymentID:   claims.DeploymentID,
		ResourceLinkID: resourceLinkID(claims),
		CreatedAt:      now,
		ExpiresAt:      now.Add(validity),
	}

	if claims.Context != nil && claims.Context.ID != "" {
		session.CourseID = claims.Context.ID
		session.CourseName = courseName(claims.Context)
	}

	return session
}

func displayName(claims *LaunchClaims) string {
	if claims.Name != "" {
		return claims.Name
	}
	if claims.GivenName != "" {
		return claims.GivenName
	}
	return DefaultUserName
}

func courseName(context *Context) string {
	if context.Title != "" {
		return context.Title
	}
	if context.Label != "" {
		return context.Label
	}
	return DefaultCourseName
}

func resourceLinkID(claims *LaunchClaims) string {
	if claims.ResourceLink == nil {
		return ""
	}
	return claims.ResourceLink.ID
}
