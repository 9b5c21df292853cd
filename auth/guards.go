package auth

import (
	"context"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBearerToken stores the raw access token presented by the request
	ContextKeyBearerToken ContextKey = "bearer_token"
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
)

// Guard is one link of an authorization chain. It inspects the request
// context and either returns an enriched context or an error that aborts
// the chain.
type Guard func(ctx context.Context) (context.Context, error)

// Chain composes guards by sequential application, in the order given.
func Chain(guards ...Guard) Guard {
	return func(ctx context.Context) (context.Context, error) {
		var err error
		for _, guard := range guards {
			ctx, err = guard(ctx)
			if err != nil {
				return ctx, err
			}
		}
		return ctx, nil
	}
}

func WithBearerToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, ContextKeyBearerToken, raw)
}

func BearerTokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(ContextKeyBearerToken).(string)
	return raw, ok && raw != ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}

// Authorized verifies the presented access token and stores the user ID in
// the context for downstream guards and resolvers. Any verification
// failure aborts the chain; nothing downstream runs.
func (s *Service) Authorized() Guard {
	return func(ctx context.Context) (context.Context, error) {
		raw, ok := BearerTokenFromContext(ctx)
		if !ok {
			return ctx, apperrors.ErrNotAuthenticated
		}
		claims, err := s.issuer.VerifyAccessToken(raw)
		if err != nil {
			return ctx, apperrors.ErrNotAuthenticated
		}
		return WithUserID(ctx, claims.UserID), nil
	}
}

// HasRole grants when the user's current role set intersects the required
// set. It must be chained after Authorized. The user is loaded fresh from
// the store on every request so role changes take effect immediately; an
// empty required set always denies.
func (s *Service) HasRole(roles ...users.RoleType) Guard {
	return func(ctx context.Context) (context.Context, error) {
		userID, ok := UserIDFromContext(ctx)
		if !ok {
			return ctx, apperrors.ErrNotAuthenticated
		}
		user, err := s.repos.Users.GetByID(ctx, userID)
		if err != nil {
			return ctx, apperrors.ErrNotAuthenticated
		}
		if !user.HasRole(roles...) {
			return ctx, apperrors.ErrNotAuthorized
		}
		return ctx, nil
	}
}

// CurrentUser loads the authenticated user for resolvers that need more
// than the user ID.
func (s *Service) CurrentUser(ctx context.Context) (*users.User, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	return user, nil
}
