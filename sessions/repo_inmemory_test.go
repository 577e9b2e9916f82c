package sessions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
	"github.com/1rychv/blunote-lti-chatkit/lti"
	"github.com/1rychv/blunote-lti-chatkit/sessions"
)

func sessionFixture(validity time.Duration) *lti.Session {
	now := time.Now()
	return &lti.Session{
		SessionID:      "lti_abc123",
		UserID:         "u42",
		UserName:       "Ada Lovelace",
		CourseID:       "course9",
		CourseName:     "Algorithms",
		Roles:          []lti.Role{lti.RoleInstructor},
		PlatformIssuer: "https://lms.example",
		CreatedAt:      now,
		ExpiresAt:      now.Add(validity),
	}
}

func TestUpsertAndGet(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	session := sessionFixture(time.Hour)

	require.NoError(t, repo.Upsert(session.SessionID, session))

	stored, err := repo.Get(session.SessionID)
	require.NoError(t, err)
	require.Equal(t, session, stored)
}

func TestUpsertValidation(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	require.Error(t, repo.Upsert("", sessionFixture(time.Hour)))
	require.Error(t, repo.Upsert("lti_abc123", nil))
}

func TestGetUnknownSession(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Get("lti_missing")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestGetExpiredSession(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	session := sessionFixture(-time.Minute)

	require.NoError(t, repo.Upsert(session.SessionID, session))

	_, err := repo.Get(session.SessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	session := sessionFixture(time.Hour)
	require.NoError(t, repo.Upsert(session.SessionID, session))

	stored, err := repo.Get(session.SessionID)
	require.NoError(t, err)
	stored.UserID = "mutated"

	again, err := repo.Get(session.SessionID)
	require.NoError(t, err)
	require.Equal(t, "u42", again.UserID)
}

func TestDelete(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	session := sessionFixture(time.Hour)
	require.NoError(t, repo.Upsert(session.SessionID, session))

	require.NoError(t, repo.Delete(session.SessionID))

	_, err := repo.Get(session.SessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
