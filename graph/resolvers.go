package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/communityhq/community-api/auth"
	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/profiles"
	"github.com/communityhq/community-api/users"
)

// UserView is the serializable shape of a user. Credential material and
// the revocation counter never leave the server.
type UserView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Confirmed   bool      `json:"confirmed"`
	Roles       []string  `json:"roles"`
	CreatedDate time.Time `json:"createdDate"`
}

type UsersCountView struct {
	CreatedDate     time.Time `json:"createdDate"`
	Count           int       `json:"count"`
	CumulativeCount int       `json:"cumulativeCount"`
}

func (e *Executor) registerResolvers() {
	authenticated := e.svc.Authorized()

	e.queries = map[string]resolver{
		"hello": {
			resolve: func(context.Context, *ast.Field, map[string]interface{}) (interface{}, error) {
				return "Hello", nil
			},
		},
		"bye": {
			guard: auth.Chain(authenticated, e.svc.HasRole(users.RoleUser)),
			resolve: func(ctx context.Context, _ *ast.Field, _ map[string]interface{}) (interface{}, error) {
				userID, _ := auth.UserIDFromContext(ctx)
				return fmt.Sprintf("your user id is %s", userID), nil
			},
		},
		"me": {
			guard: authenticated,
			resolve: func(ctx context.Context, _ *ast.Field, _ map[string]interface{}) (interface{}, error) {
				user, err := e.svc.CurrentUser(ctx)
				if err != nil {
					return nil, err
				}
				return userView(user), nil
			},
		},
		"users": {
			guard:   auth.Chain(authenticated, e.svc.HasRole(users.RoleAdmin)),
			resolve: e.resolveUsers,
		},
		"usersCountByDate": {
			guard:   auth.Chain(authenticated, e.svc.HasRole(users.RoleAdmin)),
			resolve: e.resolveUsersCountByDate,
		},
		"userByUsername": {
			resolve: e.resolveUserByUsername,
		},
	}

	e.mutations = map[string]resolver{
		"validateEmail": {
			resolve: e.resolveValidateEmail,
		},
		"validateUsername": {
			resolve: e.resolveValidateUsername,
		},
		"updateProfile": {
			guard:   authenticated,
			resolve: e.resolveUpdateProfile,
		},
		"revokeRefreshTokens": {
			guard:   auth.Chain(authenticated, e.svc.HasRole(users.RoleAdmin)),
			resolve: e.resolveRevokeRefreshTokens,
		},
	}
}

func (e *Executor) resolveUsers(ctx context.Context, _ *ast.Field, _ map[string]interface{}) (interface{}, error) {
	userList, err := e.svc.Users().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "users")
	}
	views := make([]UserView, 0, len(userList))
	for _, u := range userList {
		views = append(views, userView(u))
	}
	return views, nil
}

func (e *Executor) resolveUsersCountByDate(ctx context.Context, _ *ast.Field, _ map[string]interface{}) (interface{}, error) {
	counts, err := e.svc.Users().CountByDate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "usersCountByDate")
	}

	views := make([]UsersCountView, 0, len(counts))
	cumulative := 0
	for _, dc := range counts {
		cumulative += dc.Count
		views = append(views, UsersCountView{
			CreatedDate:     dc.Date,
			Count:           dc.Count,
			CumulativeCount: cumulative,
		})
	}
	return views, nil
}

func (e *Executor) resolveUserByUsername(ctx context.Context, field *ast.Field, vars map[string]interface{}) (interface{}, error) {
	username, err := stringArg(field, "username", vars)
	if err != nil {
		return nil, err
	}
	user, err := e.svc.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.New("invalid username")
		}
		return nil, errors.Wrap(err, "userByUsername")
	}
	return userView(user), nil
}

func (e *Executor) resolveValidateEmail(ctx context.Context, field *ast.Field, vars map[string]interface{}) (interface{}, error) {
	email, err := stringArg(field, "email", vars)
	if err != nil {
		return nil, err
	}
	if err := users.ValidateEmailFormat(email); err != nil {
		return false, nil
	}
	_, err = e.svc.Users().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return true, nil
	case err != nil:
		return nil, errors.Wrap(err, "validateEmail")
	default:
		return false, nil
	}
}

func (e *Executor) resolveValidateUsername(ctx context.Context, field *ast.Field, vars map[string]interface{}) (interface{}, error) {
	username, err := stringArg(field, "username", vars)
	if err != nil {
		return nil, err
	}
	if err := users.ValidateUsernameFormat(username); err != nil {
		return false, nil
	}
	_, err = e.svc.Users().GetByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return true, nil
	case err != nil:
		return nil, errors.Wrap(err, "validateUsername")
	default:
		return false, nil
	}
}

// profileInput mirrors the ProfileInput schema type.
type profileInput struct {
	ShortBio            string                       `json:"shortBio"`
	ProfilePic          string                       `json:"profilePic"`
	Technologies        []string                     `json:"technologies"`
	SocialLinks         profiles.SocialLinks         `json:"socialLinks"`
	IsEmailPublic       bool                         `json:"isEmailPublic"`
	ProfessionalDetails profiles.ProfessionalDetails `json:"professionalDetails"`
}

func (e *Executor) resolveUpdateProfile(ctx context.Context, field *ast.Field, vars map[string]interface{}) (interface{}, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}

	var input profileInput
	if err := objectArg(field, "data", vars, &input); err != nil {
		return nil, err
	}

	profile := &profiles.Profile{
		UserID:              userID,
		ShortBio:            input.ShortBio,
		ProfilePic:          input.ProfilePic,
		Technologies:        input.Technologies,
		SocialLinks:         input.SocialLinks,
		IsEmailPublic:       input.IsEmailPublic,
		ProfessionalDetails: input.ProfessionalDetails,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := e.svc.Profiles().Upsert(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "updateProfile")
	}
	return profile, nil
}

func (e *Executor) resolveRevokeRefreshTokens(ctx context.Context, field *ast.Field, vars map[string]interface{}) (interface{}, error) {
	userID, err := stringArg(field, "userId", vars)
	if err != nil {
		return nil, err
	}
	if err := e.svc.RevokeRefreshTokens(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.New("invalid userId")
		}
		return nil, errors.Wrap(err, "revokeRefreshTokens")
	}
	return true, nil
}

func userView(u *users.User) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Confirmed:   u.Confirmed,
		Roles:       u.RoleStrings(),
		CreatedDate: u.CreatedDate,
	}
}

func stringArg(field *ast.Field, name string, vars map[string]interface{}) (string, error) {
	arg := field.Arguments.ForName(name)
	if arg == nil {
		return "", errors.Errorf("missing argument %q", name)
	}
	value, err := arg.Value.Value(vars)
	if err != nil {
		return "", errors.Wrapf(err, "argument %q", name)
	}
	s, ok := value.(string)
	if !ok {
		return "", errors.Errorf("argument %q must be a string", name)
	}
	return s, nil
}

// objectArg decodes an input-object argument into the given struct via its
// json tags.
func objectArg(field *ast.Field, name string, vars map[string]interface{}, target interface{}) error {
	arg := field.Arguments.ForName(name)
	if arg == nil {
		return errors.Errorf("missing argument %q", name)
	}
	value, err := arg.Value.Value(vars)
	if err != nil {
		return errors.Wrapf(err, "argument %q", name)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "argument %q", name)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return errors.Wrapf(err, "argument %q", name)
	}
	return nil
}
