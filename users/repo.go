package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrCredentialRequired = errors.New("a hashed credential is required")
)

// DateCount is the number of users created on a given date.
type DateCount struct {
	Date  time.Time
	Count int
}

type UserRepo interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	CountByDate(ctx context.Context) ([]DateCount, error)

	// IncrementTokenVersion atomically bumps the user's revocation counter
	// and returns the new value. Bumping invalidates every outstanding
	// refresh token for the user.
	IncrementTokenVersion(ctx context.Context, id string) (int, error)
}
