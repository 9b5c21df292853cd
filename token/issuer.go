package token

import (
	"time"

	"github.com/pkg/errors"

	"github.com/communityhq/community-api/users"
)

// TokenPair is the result of a successful authentication event. The caller
// is responsible for returning the access token to the client and setting
// the refresh token on the transport (cookie).
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer builds access/refresh token pairs from a user. The refresh token
// embeds the user's revocation counter as it stood at issuance time.
type Issuer struct {
	codec         *Codec
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type IssuerOption func(*Issuer)

func WithTokenExpiry(accessExpiry, refreshExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessExpiry = accessExpiry
		i.refreshExpiry = refreshExpiry
	}
}

func NewIssuer(codec *Codec, accessSecret, refreshSecret string, options ...IssuerOption) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("[NewIssuer] codec is required")
	}
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("[NewIssuer] access and refresh secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("[NewIssuer] access and refresh secrets must differ")
	}

	i := &Issuer{
		codec:         codec,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  15 * time.Minute,
		refreshExpiry: 7 * 24 * time.Hour,
	}
	for _, opt := range options {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) IssueAccessToken(user *users.User) (string, error) {
	return i.codec.SignAccess(user.ID, i.accessSecret, i.accessExpiry)
}

func (i *Issuer) IssueRefreshToken(user *users.User) (string, error) {
	return i.codec.SignRefresh(user.ID, user.TokenVersion, i.refreshSecret, i.refreshExpiry)
}

func (i *Issuer) IssuePair(user *users.User) (TokenPair, error) {
	accessToken, err := i.IssueAccessToken(user)
	if err != nil {
		return TokenPair{}, errors.Wrap(err, "Issuer.IssuePair access")
	}
	refreshToken, err := i.IssueRefreshToken(user)
	if err != nil {
		return TokenPair{}, errors.Wrap(err, "Issuer.IssuePair refresh")
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccessToken checks a presented access token against the access
// secret and returns its claims.
func (i *Issuer) VerifyAccessToken(raw string) (*AccessClaims, error) {
	return i.codec.VerifyAccess(raw, i.accessSecret)
}

// VerifyRefreshToken checks signature and expiry only; the version
// equality gate belongs to the refresh flow.
func (i *Issuer) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	return i.codec.VerifyRefresh(raw, i.refreshSecret)
}

// RefreshExpiry is exposed so the transport layer can scope the refresh
// cookie to the token's lifetime.
func (i *Issuer) RefreshExpiry() time.Duration {
	return i.refreshExpiry
}
