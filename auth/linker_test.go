package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhq/community-api/auth"
	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/users"
)

func TestLinkExternalIdentityCreatesNewAccount(t *testing.T) {
	f := setupTestFixture(t)

	identity := auth.ExternalIdentity{
		ExternalID:  "555",
		Email:       "new.user@example.com",
		DisplayName: "New User",
		LoginHandle: "newuser",
	}

	user, err := f.service.LinkExternalIdentity(context.Background(), identity)
	require.NoError(t, err)
	require.Equal(t, "newuser-community", user.Username)
	require.Equal(t, "new.user@example.com", user.Email)
	require.Equal(t, "555", user.ExternalID)
	require.Equal(t, "New User", user.DisplayName)
	require.True(t, user.Confirmed)
	require.Equal(t, []users.RoleType{users.RoleUser}, user.Roles)
	require.NotEmpty(t, user.PasswordHash)

	stored, err := f.userRepo.GetByExternalID(context.Background(), "555")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestLinkExternalIdentityMergesByEmail(t *testing.T) {
	f := setupTestFixture(t)
	existing := f.createTestUser(t, "johndoe")

	identity := auth.ExternalIdentity{
		ExternalID:  "777",
		Email:       existing.Email,
		DisplayName: "John Doe",
		LoginHandle: "johndoe-gh",
	}

	user, err := f.service.LinkExternalIdentity(context.Background(), identity)
	require.NoError(t, err)
	require.Equal(t, existing.ID, user.ID)
	require.Equal(t, "johndoe", user.Username) // username unchanged on merge
	require.Equal(t, "777", user.ExternalID)

	stored, err := f.userRepo.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Equal(t, "777", stored.ExternalID)
}

func TestLinkExternalIdentityExistingLink(t *testing.T) {
	f := setupTestFixture(t)

	identity := auth.ExternalIdentity{
		ExternalID:  "555",
		Email:       "repeat@example.com",
		DisplayName: "Repeat User",
		LoginHandle: "repeat",
	}

	first, err := f.service.LinkExternalIdentity(context.Background(), identity)
	require.NoError(t, err)

	// A second callback for the same identity logs straight in
	second, err := f.service.LinkExternalIdentity(context.Background(), identity)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	all, err := f.userRepo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestLinkExternalIdentityRequiresExternalID(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.LinkExternalIdentity(context.Background(), auth.ExternalIdentity{
		Email:       "no.id@example.com",
		LoginHandle: "noid",
	})
	require.Error(t, err)
}

func TestLinkExternalIdentitySurfacesDuplicates(t *testing.T) {
	f := setupTestFixture(t)

	// Occupy the username the external handle would map to
	f.createTestUser(t, "taken-community")

	_, err := f.service.LinkExternalIdentity(context.Background(), auth.ExternalIdentity{
		ExternalID:  "999",
		Email:       "somebody.else@example.com",
		LoginHandle: "taken",
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
}
