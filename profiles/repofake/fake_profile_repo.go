package fakeprofilerepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/profiles"
)

var _ profiles.Repo = (*FakeProfileRepo)(nil)

type FakeProfileRepo struct {
	byUserID map[string]*profiles.Profile
	lock     sync.RWMutex
}

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{
		byUserID: make(map[string]*profiles.Profile),
	}
}

func (pr *FakeProfileRepo) Upsert(_ context.Context, profile *profiles.Profile) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	now := time.Now().UTC()
	if existing, ok := pr.byUserID[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.CreatedDate = existing.CreatedDate
	} else {
		profile.ID = uuid.New().String()
		profile.CreatedDate = now
	}
	profile.UpdatedDate = now

	stored := *profile
	pr.byUserID[profile.UserID] = &stored
	return nil
}

func (pr *FakeProfileRepo) GetByUserID(_ context.Context, userID string) (*profiles.Profile, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	profile, ok := pr.byUserID[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}
