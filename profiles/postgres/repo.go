package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/profiles"
)

var _ profiles.Repo = (*ProfileRepo)(nil)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Upsert(ctx context.Context, profile *profiles.Profile) error {
	socialLinks, err := json.Marshal(profile.SocialLinks)
	if err != nil {
		return fmt.Errorf("error encoding social links: %w", err)
	}
	professional, err := json.Marshal(profile.ProfessionalDetails)
	if err != nil {
		return fmt.Errorf("error encoding professional details: %w", err)
	}

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `INSERT INTO profiles (id, user_id, short_bio, profile_pic, technologies, social_links, is_email_public, professional_details, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	          ON CONFLICT (user_id) DO UPDATE
	          SET short_bio = EXCLUDED.short_bio,
	              profile_pic = EXCLUDED.profile_pic,
	              technologies = EXCLUDED.technologies,
	              social_links = EXCLUDED.social_links,
	              is_email_public = EXCLUDED.is_email_public,
	              professional_details = EXCLUDED.professional_details,
	              updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		profile.ID, profile.UserID, profile.ShortBio, profile.ProfilePic,
		strings.Join(profile.Technologies, ","), socialLinks,
		profile.IsEmailPublic, professional, now).
		Scan(&profile.ID, &profile.CreatedDate)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	profile.UpdatedDate = now
	return nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*profiles.Profile, error) {
	query := `SELECT id, user_id, short_bio, profile_pic, technologies, social_links, is_email_public, professional_details, created_at, updated_at
	          FROM profiles
	          WHERE user_id = $1`

	var (
		profile      profiles.Profile
		technologies string
		socialLinks  []byte
		professional []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.ShortBio, &profile.ProfilePic,
		&technologies, &socialLinks, &profile.IsEmailPublic, &professional,
		&profile.CreatedDate, &profile.UpdatedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	if technologies != "" {
		profile.Technologies = strings.Split(technologies, ",")
	}
	if err := json.Unmarshal(socialLinks, &profile.SocialLinks); err != nil {
		return nil, fmt.Errorf("error decoding social links: %w", err)
	}
	if err := json.Unmarshal(professional, &profile.ProfessionalDetails); err != nil {
		return nil, fmt.Errorf("error decoding professional details: %w", err)
	}
	return &profile, nil
}
