package auth

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/users"
)

// RoleEditType selects the role modification operation
type RoleEditType string

const (
	RoleEditAdd    RoleEditType = "ADD"
	RoleEditRemove RoleEditType = "REMOVE"
)

var (
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidEditType = errors.New("invalid operation")
	ErrUnknownUser     = errors.New("invalid userId")
)

// ModifyUserRoles adds or removes a role on the given user. Both edits are
// idempotent: adding a present role or removing an absent one leaves the
// role set unchanged.
func (s *Service) ModifyUserRoles(ctx context.Context, userID string, role users.RoleType, editType RoleEditType) error {
	if !users.ValidRole(role) {
		return ErrInvalidRole
	}
	if editType != RoleEditAdd && editType != RoleEditRemove {
		return ErrInvalidEditType
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrUnknownUser
		}
		return pkgerrors.Wrap(err, "Service.ModifyUserRoles GetByID")
	}

	switch editType {
	case RoleEditAdd:
		user.AddRole(role)
	case RoleEditRemove:
		user.RemoveRole(role)
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(err, "Service.ModifyUserRoles Update")
	}
	return nil
}
