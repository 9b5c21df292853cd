package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

// RefreshResult is what the refresh endpoint returns to the client. The
// rotated refresh token travels on the cookie, never in the body.
type RefreshResult struct {
	OK           bool   `json:"ok"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

var refreshFailed = RefreshResult{OK: false, AccessToken: ""}

// Refresh validates a presented refresh token and rotates the pair. Every
// gate failure produces the same {ok:false, accessToken:""} result so the
// client cannot tell which check failed; the reason is only logged.
func (s *Service) Refresh(ctx context.Context, rawToken string) RefreshResult {
	if rawToken == "" {
		log.Error().Msg("refresh: no token presented")
		return refreshFailed
	}

	claims, err := s.issuer.VerifyRefreshToken(rawToken)
	if err != nil {
		log.Error().Err(err).Msg("refresh: token verification failed")
		return refreshFailed
	}

	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		log.Error().Str("userId", claims.UserID).Msg("refresh: user no longer exists")
		return refreshFailed
	}

	if user.TokenVersion != claims.TokenVersion {
		log.Error().Str("userId", user.ID).
			Int("presented", claims.TokenVersion).
			Int("current", user.TokenVersion).
			Msg("refresh: token version mismatch")
		return refreshFailed
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		log.Error().Err(err).Str("userId", user.ID).Msg("refresh: reissue failed")
		return refreshFailed
	}

	return RefreshResult{
		OK:           true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
