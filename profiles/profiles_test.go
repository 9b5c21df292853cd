package profiles_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhq/community-api/profiles"
)

func TestValidateShortBio(t *testing.T) {
	profile := &profiles.Profile{ShortBio: strings.Repeat("a", 100)}
	require.NoError(t, profile.Validate())

	profile.ShortBio = strings.Repeat("a", 101)
	require.ErrorIs(t, profile.Validate(), profiles.ErrShortBioTooLong)

	empty := &profiles.Profile{}
	require.NoError(t, empty.Validate())
}
