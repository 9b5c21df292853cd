package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	apperrors "github.com/communityhq/community-api/internal/errors"
)

// AccessClaims is the payload of a short-lived access token. It is checked
// by signature and expiry only; revocation never applies to it.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// RefreshClaims is the payload of a long-lived refresh token. The embedded
// TokenVersion must match the user's stored revocation counter on use.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID       string `json:"userId"`
	TokenVersion int    `json:"tokenVersion"`
}

// Codec signs and verifies session tokens with symmetric HMAC-SHA256.
// Access and refresh tokens use distinct secrets, so a leaked access-token
// secret cannot forge refresh tokens. The codec holds no state besides the
// clock and is safe for concurrent use.
type Codec struct {
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the time source (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(options ...CodecOption) *Codec {
	c := &Codec{nowFunc: time.Now}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Codec) SignAccess(userID string, secret []byte, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: c.registeredClaims(ttl),
		UserID:           userID,
	}
	return c.sign(claims, secret)
}

func (c *Codec) SignRefresh(userID string, tokenVersion int, secret []byte, ttl time.Duration) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: c.registeredClaims(ttl),
		UserID:           userID,
		TokenVersion:     tokenVersion,
	}
	return c.sign(claims, secret)
}

func (c *Codec) VerifyAccess(raw string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(raw, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) VerifyRefresh(raw string, secret []byte) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(raw, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) registeredClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := c.nowFunc()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (c *Codec) sign(claims jwt.Claims, secret []byte) (string, error) {
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "Codec.sign SignedString")
	}
	return signedToken, nil
}

func (c *Codec) verify(raw string, secret []byte, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
	)
	return mapVerifyError(err)
}

// mapVerifyError folds the jwt library's error chain into the codec's
// three failure kinds: Malformed, BadSignature, Expired.
func mapVerifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.ErrBadSignature
	default:
		return apperrors.ErrMalformedToken
	}
}
