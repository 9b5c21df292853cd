package fakeuserrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user store. It enforces the same uniqueness
// rules as the postgres store so tests exercise duplicate-identity paths.
type FakeUserRepo struct {
	users map[string]*users.User
	lock  sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	for _, existing := range ur.users {
		if existing.Username == user.Username {
			return apperrors.ErrDuplicateIdentity
		}
		if user.Email != "" && existing.Email == user.Email {
			return apperrors.ErrDuplicateIdentity
		}
		if user.ExternalID != "" && existing.ExternalID == user.ExternalID {
			return apperrors.ErrDuplicateIdentity
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	ur.users[user.ID] = &stored
	return nil
}

func (ur *FakeUserRepo) Update(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	existing, ok := ur.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.TokenVersion = existing.TokenVersion // only IncrementTokenVersion moves the counter
	user.UpdatedDate = time.Now().UTC()
	stored := *user
	ur.users[user.ID] = &stored
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	return ur.findBy(func(u *users.User) bool { return email != "" && u.Email == email })
}

func (ur *FakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*users.User, error) {
	return ur.findBy(func(u *users.User) bool { return externalID != "" && u.ExternalID == externalID })
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	return ur.findBy(func(u *users.User) bool { return u.Username == username })
}

func (ur *FakeUserRepo) List(_ context.Context) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, u := range ur.users {
		copied := *u
		userList = append(userList, &copied)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})
	return userList, nil
}

func (ur *FakeUserRepo) CountByDate(_ context.Context) ([]users.DateCount, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	byDate := make(map[time.Time]int)
	for _, u := range ur.users {
		day := u.CreatedDate.UTC().Truncate(24 * time.Hour)
		byDate[day]++
	}

	counts := make([]users.DateCount, 0, len(byDate))
	for day, count := range byDate {
		counts = append(counts, users.DateCount{Date: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Date.Before(counts[j].Date)
	})
	return counts, nil
}

func (ur *FakeUserRepo) IncrementTokenVersion(_ context.Context, id string) (int, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	user.TokenVersion++
	return user.TokenVersion, nil
}

func (ur *FakeUserRepo) findBy(match func(*users.User) bool) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	for _, u := range ur.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
