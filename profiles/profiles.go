package profiles

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const maxShortBioLength = 100

var ErrShortBioTooLong = errors.Errorf("short bio must be at most %d characters", maxShortBioLength)

type SocialLinks struct {
	Github          string `json:"github,omitempty"`
	Twitter         string `json:"twitter,omitempty"`
	Linkedin        string `json:"linkedin,omitempty"`
	PersonalWebsite string `json:"personalWebsite,omitempty"`
}

type ProfessionalDetails struct {
	CurrentCompanyName string `json:"currentCompanyName,omitempty"`
	CurrentRole        string `json:"currentRole,omitempty"`
	LookingForJob      bool   `json:"lookingForJob"`
	Location           string `json:"location,omitempty"`
}

// Profile is the public-facing profile owned by a single user. It is
// loaded and saved through explicit store calls; nothing resolves lazily.
type Profile struct {
	ID                  string              `json:"id,omitempty"`
	UserID              string              `json:"-"`
	ShortBio            string              `json:"shortBio"`
	ProfilePic          string              `json:"profilePic"`
	Technologies        []string            `json:"technologies"`
	SocialLinks         SocialLinks         `json:"socialLinks"`
	IsEmailPublic       bool                `json:"isEmailPublic"`
	ProfessionalDetails ProfessionalDetails `json:"professionalDetails"`
	CreatedDate         time.Time           `json:"createdDate,omitempty"`
	UpdatedDate         time.Time           `json:"updatedDate,omitempty"`
}

// Validate checks field constraints before the profile reaches a store.
func (p *Profile) Validate() error {
	if len(p.ShortBio) > maxShortBioLength {
		return ErrShortBioTooLong
	}
	return nil
}

type Repo interface {
	// Upsert creates the user's profile or replaces it if one exists.
	Upsert(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
}
