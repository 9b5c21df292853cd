package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/communityhq/community-api/profiles"
	"github.com/communityhq/community-api/token"
	"github.com/communityhq/community-api/users"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo
	Profiles profiles.Repo
}

// Service provides session issuance, refresh, external identity linking
// and role administration on top of the principal store.
type Service struct {
	repos  Repos
	issuer *token.Issuer
}

func NewService(repos Repos, issuer *token.Issuer) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Profiles == nil {
		return nil, errors.New("[NewService] Profiles repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] issuer is required")
	}
	return &Service{repos: repos, issuer: issuer}, nil
}

// IssueTokens mints a fresh access/refresh pair after a successful
// authentication event.
func (s *Service) IssueTokens(user *users.User) (token.TokenPair, error) {
	return s.issuer.IssuePair(user)
}

// RevokeRefreshTokens bumps the user's revocation counter. Every refresh
// token issued before the bump fails its version check on next use; no
// token blacklist is involved.
func (s *Service) RevokeRefreshTokens(ctx context.Context, userID string) error {
	version, err := s.repos.Users.IncrementTokenVersion(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "Service.RevokeRefreshTokens")
	}
	log.Info().Str("userId", userID).Int("tokenVersion", version).Msg("refresh tokens revoked")
	return nil
}

// Users exposes the principal store for read-side resolvers.
func (s *Service) Users() users.UserRepo {
	return s.repos.Users
}

// Profiles exposes the profile store.
func (s *Service) Profiles() profiles.Repo {
	return s.repos.Profiles
}
