package users

import (
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user role from a closed enumeration
type RoleType string

const (
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
)

// ValidRole reports whether the given role is part of the enumeration
func ValidRole(role RoleType) bool {
	return role == RoleUser || role == RoleAdmin
}

// HashedPassword is a one-way hashed credential. Only values of this type
// can reach a store; hashing happens explicitly at the call site that
// creates the user.
type HashedPassword string

type User struct {
	ID           string         `json:"id,omitempty"`          // Unique identifier, assigned at creation, immutable
	Username     string         `json:"username,omitempty"`    // Unique username
	Email        string         `json:"email,omitempty"`       // Optional, unique when present
	ExternalID   string         `json:"-"`                     // External identity provider id, unique when present
	PasswordHash HashedPassword `json:"-"`                     // Hashed credential - never serialize
	DisplayName  string         `json:"displayName,omitempty"` // Human readable name
	Roles        []RoleType     `json:"roles,omitempty"`       // Role tags (USER, ADMIN)
	TokenVersion int            `json:"-"`                     // Monotonic refresh-token revocation counter
	Confirmed    bool           `json:"confirmed"`             // Gates certain capability checks
	CreatedDate  time.Time      `json:"createdDate,omitempty"`
	UpdatedDate  time.Time      `json:"updatedDate,omitempty"`
}

// New builds a user from a pre-hashed credential. A plaintext password can
// never be passed in here; hash it first with HashPassword.
func New(username, email string, passwordHash HashedPassword) (*User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if passwordHash == "" {
		return nil, ErrCredentialRequired
	}
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []RoleType{RoleUser},
		TokenVersion: 0,
		CreatedDate:  now,
		UpdatedDate:  now,
	}, nil
}

func HashPassword(password string) (HashedPassword, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return HashedPassword(bytes), err
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HasRole reports whether the user holds any of the given roles. An empty
// required set never grants.
func (u *User) HasRole(roles ...RoleType) bool {
	for _, role := range roles {
		if slices.Contains(u.Roles, role) {
			return true
		}
	}
	return false
}

// AddRole adds a role; adding an already-present role is a no-op.
func (u *User) AddRole(role RoleType) {
	if !slices.Contains(u.Roles, role) {
		u.Roles = append(u.Roles, role)
	}
}

// RemoveRole removes a role; removing an absent role is a no-op.
func (u *User) RemoveRole(role RoleType) {
	u.Roles = slices.DeleteFunc(u.Roles, func(r RoleType) bool {
		return r == role
	})
}

// RoleStrings returns the role set as plain strings for serialization.
func (u *User) RoleStrings() []string {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return roles
}
