package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/communityhq/community-api/auth"
	"github.com/communityhq/community-api/graph"
	"github.com/communityhq/community-api/users"
)

// RefreshTokenHandler rotates a session from the refresh-token cookie.
// Every failure mode answers {ok:false, accessToken:""} with status 200;
// the reason is logged server-side only.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rawToken string
		if cookie, err := r.Cookie(s.config.GetRefreshCookieName()); err == nil {
			rawToken = cookie.Value
		}

		result := s.auth.Refresh(r.Context(), rawToken)
		if result.OK {
			s.setRefreshCookie(w, result.RefreshToken)
		}
		writeJSON(w, result)
	}
}

type modifyUserRolesRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Type   string `json:"type"`
}

type modifyUserRolesResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ModifyUserRolesHandler adds or removes a role on a user. The caller only
// needs a valid access token; it does not need to hold an admin role.
func (s *Server) ModifyUserRolesHandler() http.HandlerFunc {
	authorized := s.auth.Authorized()

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithBearerToken(r.Context(), bearerToken(r))
		if _, err := authorized(ctx); err != nil {
			writeJSON(w, modifyUserRolesResponse{OK: false, Message: "Not authorized"})
			return
		}

		var req modifyUserRolesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, modifyUserRolesResponse{OK: false, Message: "invalid request body"})
			return
		}

		err := s.auth.ModifyUserRoles(ctx, req.UserID, users.RoleType(req.Role), auth.RoleEditType(req.Type))
		if err != nil {
			switch err {
			case auth.ErrInvalidRole, auth.ErrInvalidEditType, auth.ErrUnknownUser:
				writeJSON(w, modifyUserRolesResponse{OK: false, Message: err.Error()})
			default:
				log.Error().Err(err).Msg("modify user roles failed")
				writeJSON(w, modifyUserRolesResponse{OK: false, Message: "internal error"})
			}
			return
		}

		writeJSON(w, modifyUserRolesResponse{OK: true, Message: "Modified user roles"})
	}
}

// GraphQLHandler forwards queries to the admission-controlled executor.
// The bearer token travels on the context so resolver guards can verify it.
func (s *Server) GraphQLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req graph.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"errors":[{"message":"invalid request body"}]}`, http.StatusBadRequest)
			return
		}

		ctx := auth.WithBearerToken(r.Context(), bearerToken(r))
		writeJSON(w, s.executor.Execute(ctx, req))
	}
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetRefreshCookieName(),
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(s.config.GetRefreshTokenExpiry().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// bearerToken extracts the access token from the Authorization header;
// it returns an empty string when no bearer token is presented.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
