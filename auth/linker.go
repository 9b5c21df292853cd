package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/users"
)

// usernameSuffix is appended to the external login handle when a new
// account is created through external login.
const usernameSuffix = "-community"

const generatedCredentialLength = 15

// ExternalIdentity is the assertion delivered by the identity provider
// callback.
type ExternalIdentity struct {
	ExternalID  string
	Email       string
	DisplayName string
	LoginHandle string
}

// LinkExternalIdentity reconciles an external login assertion with zero or
// one existing user:
//
//  1. a user already linked to this external ID logs straight in, no mutation
//  2. a user with the same email and no external link is merged by setting
//     the external ID on the existing account
//  3. otherwise a new confirmed account is created whose credential is
//     random, hashed and discarded - the account is only reachable through
//     external login afterwards
//
// The lookup and the later write are not atomic against the store's
// uniqueness rules: two concurrent callbacks for the same previously
// unseen identity can both take branch 3, and the loser surfaces the
// store's duplicate-identity error rather than being silently retried.
func (s *Service) LinkExternalIdentity(ctx context.Context, identity ExternalIdentity) (*users.User, error) {
	if identity.ExternalID == "" {
		return nil, errors.New("LinkExternalIdentity: external ID is required")
	}

	user, err := s.repos.Users.GetByExternalID(ctx, identity.ExternalID)
	switch {
	case err == nil:
		// Already linked
		log.Info().Str("userId", user.ID).Str("externalId", identity.ExternalID).
			Msg("external login: existing link")
		return user, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "LinkExternalIdentity GetByExternalID")
	}

	user, err = s.repos.Users.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		// Found by email: merge the account by attaching the external ID
		user.ExternalID = identity.ExternalID
		if err := s.repos.Users.Update(ctx, user); err != nil {
			return nil, errors.Wrap(err, "LinkExternalIdentity merge")
		}
		log.Info().Str("userId", user.ID).Str("externalId", identity.ExternalID).
			Msg("external login: merged into existing account")
		return user, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "LinkExternalIdentity GetByEmail")
	}

	return s.createFromExternalIdentity(ctx, identity)
}

func (s *Service) createFromExternalIdentity(ctx context.Context, identity ExternalIdentity) (*users.User, error) {
	credential, err := users.GenerateCredential(generatedCredentialLength)
	if err != nil {
		return nil, errors.Wrap(err, "LinkExternalIdentity credential")
	}
	passwordHash, err := users.HashPassword(credential)
	if err != nil {
		return nil, errors.Wrap(err, "LinkExternalIdentity hash")
	}

	user, err := users.New(identity.LoginHandle+usernameSuffix, identity.Email, passwordHash)
	if err != nil {
		return nil, errors.Wrap(err, "LinkExternalIdentity new user")
	}
	user.ExternalID = identity.ExternalID
	user.DisplayName = identity.DisplayName
	user.Confirmed = true

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "LinkExternalIdentity create")
	}
	log.Info().Str("userId", user.ID).Str("externalId", identity.ExternalID).
		Msg("external login: created new account")
	return user, nil
}
