package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/communityhq/community-api/auth"
	apperrors "github.com/communityhq/community-api/internal/errors"
)

const oauthStateCookie = "oauth_state"

// GithubStartHandler redirects the user agent to GitHub's authorization
// page. The state parameter is mirrored in a short-lived cookie for CSRF
// validation on the callback.
func (s *Server) GithubStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     RouteGithubCallback,
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, s.oauthConfig.AuthCodeURL(state), http.StatusFound)
	}
}

// GithubCallbackHandler completes the external login: exchange the code,
// read the GitHub identity, link it to a user, issue a token pair, set the
// refresh cookie and redirect to the front-end with both tokens.
func (s *Server) GithubCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errorParam := r.FormValue("error"); errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, r.FormValue("error_description")), http.StatusBadRequest)
			return
		}

		code := r.FormValue("code")
		state := r.FormValue("state")
		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || stateCookie.Value != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		oauthToken, err := s.oauthConfig.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		identity, err := s.fetchGithubIdentity(r, oauthToken.AccessToken)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to read GitHub identity: %v", err), http.StatusInternalServerError)
			return
		}

		user, err := s.auth.LinkExternalIdentity(r.Context(), identity)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicateIdentity) {
				http.Error(w, "Account conflict while linking identity", http.StatusConflict)
				return
			}
			http.Error(w, fmt.Sprintf("Failed to link identity: %v", err), http.StatusInternalServerError)
			return
		}

		pair, err := s.auth.IssueTokens(user)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to issue tokens: %v", err), http.StatusInternalServerError)
			return
		}

		s.setRefreshCookie(w, pair.RefreshToken)

		redirectURL := fmt.Sprintf("%s?accessToken=%s&refreshToken=%s&oauth=true",
			s.config.GetOriginEndpoint(),
			url.QueryEscape(pair.AccessToken),
			url.QueryEscape(pair.RefreshToken))
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

func (s *Server) fetchGithubIdentity(r *http.Request, accessToken string) (auth.ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, s.githubUserURL, nil)
	if err != nil {
		return auth.ExternalIdentity{}, errors.Wrap(err, "fetchGithubIdentity request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return auth.ExternalIdentity{}, errors.Wrap(err, "fetchGithubIdentity do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.ExternalIdentity{}, errors.Errorf("fetchGithubIdentity status %d", resp.StatusCode)
	}

	var profile struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return auth.ExternalIdentity{}, errors.Wrap(err, "fetchGithubIdentity decode")
	}

	log.Debug().Str("login", profile.Login).Msg("github identity fetched")
	return auth.ExternalIdentity{
		ExternalID:  strconv.FormatInt(profile.ID, 10),
		Email:       profile.Email,
		DisplayName: profile.Name,
		LoginHandle: profile.Login,
	}, nil
}

func generateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length]
}
