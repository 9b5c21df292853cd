package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communityhq/community-api/auth"
	"github.com/communityhq/community-api/graph"
	"github.com/communityhq/community-api/internal/config"
	"github.com/communityhq/community-api/profiles"
	fakeprofilerepo "github.com/communityhq/community-api/profiles/repofake"
	"github.com/communityhq/community-api/server"
	"github.com/communityhq/community-api/token"
	"github.com/communityhq/community-api/users"
	fakeuserrepo "github.com/communityhq/community-api/users/repofake"
)

const (
	accessSecretStr  = "access-secret-1234"
	refreshSecretStr = "refresh-secret-5678"
	refreshCookie    = "jid"
)

type testFixture struct {
	userRepo    users.UserRepo
	profileRepo profiles.Repo
	issuer      *token.Issuer
	service     *auth.Service
	server      *server.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("ACCESS_TOKEN_SECRET", accessSecretStr)
	t.Setenv("REFRESH_TOKEN_SECRET", refreshSecretStr)
	cfg := config.New()

	userRepo := fakeuserrepo.NewFakeUserRepo()
	profileRepo := fakeprofilerepo.NewFakeProfileRepo()

	issuer, err := token.NewIssuer(token.NewCodec(), cfg.GetAccessTokenSecret(), cfg.GetRefreshTokenSecret())
	require.NoError(t, err)

	service, err := auth.NewService(auth.Repos{Users: userRepo, Profiles: profileRepo}, issuer)
	require.NoError(t, err)

	executor, err := graph.NewExecutor(service, cfg.GetMaxQueryComplexity())
	require.NoError(t, err)

	return &testFixture{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		issuer:      issuer,
		service:     service,
		server:      server.New(cfg, service, executor),
	}
}

func (f *testFixture) createTestUser(t *testing.T, username string, roles ...users.RoleType) *users.User {
	t.Helper()

	passwordHash, err := users.HashPassword("password123")
	require.NoError(t, err)

	user, err := users.New(username, username+"@example.com", passwordHash)
	require.NoError(t, err)
	if len(roles) > 0 {
		user.Roles = roles
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *testFixture) bearerToken(t *testing.T, user *users.User) string {
	t.Helper()

	accessToken, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)
	return "Bearer " + accessToken
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, modify func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if modify != nil {
		modify(req)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRefreshTokenEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "johndoe")

	t.Run("no cookie", func(t *testing.T) {
		rec := postJSON(t, f.server, server.RouteRefreshToken, struct{}{}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var result auth.RefreshResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		require.False(t, result.OK)
		require.Empty(t, result.AccessToken)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("valid cookie rotates the pair", func(t *testing.T) {
		refreshToken, err := f.issuer.IssueRefreshToken(user)
		require.NoError(t, err)

		rec := postJSON(t, f.server, server.RouteRefreshToken, struct{}{}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: refreshCookie, Value: refreshToken})
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.Bytes()

		var result auth.RefreshResult
		require.NoError(t, json.Unmarshal(body, &result))
		require.True(t, result.OK)
		require.NotEmpty(t, result.AccessToken)

		rotated := cookieByName(rec.Result().Cookies(), refreshCookie)
		require.NotNil(t, rotated)
		require.NotEmpty(t, rotated.Value)
		require.True(t, rotated.HttpOnly)

		// The body never carries the refresh token
		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &raw))
		require.NotContains(t, raw, "refreshToken")
	})

	t.Run("revoked token fails silently", func(t *testing.T) {
		refreshToken, err := f.issuer.IssueRefreshToken(user)
		require.NoError(t, err)
		require.NoError(t, f.service.RevokeRefreshTokens(context.Background(), user.ID))

		rec := postJSON(t, f.server, server.RouteRefreshToken, struct{}{}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: refreshCookie, Value: refreshToken})
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var result auth.RefreshResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		require.False(t, result.OK)
		require.Empty(t, result.AccessToken)
	})
}

type rolesResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func TestModifyUserRolesEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	caller := f.createTestUser(t, "caller")
	target := f.createTestUser(t, "target")

	rolesBody := func(userID, role, editType string) map[string]string {
		return map[string]string{"userId": userID, "role": role, "type": editType}
	}

	t.Run("no bearer token", func(t *testing.T) {
		rec := postJSON(t, f.server, server.RouteModifyUserRoles, rolesBody(target.ID, "ADMIN", "ADD"), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp rolesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.False(t, resp.OK)
		require.Equal(t, "Not authorized", resp.Message)
	})

	t.Run("any authenticated caller may edit roles", func(t *testing.T) {
		rec := postJSON(t, f.server, server.RouteModifyUserRoles, rolesBody(target.ID, "ADMIN", "ADD"), func(r *http.Request) {
			r.Header.Set("Authorization", f.bearerToken(t, caller))
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp rolesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.True(t, resp.OK)
		require.Equal(t, "Modified user roles", resp.Message)

		stored, err := f.userRepo.GetByID(context.Background(), target.ID)
		require.NoError(t, err)
		require.True(t, stored.HasRole(users.RoleAdmin))
	})

	t.Run("invalid inputs", func(t *testing.T) {
		tests := []struct {
			name    string
			body    map[string]string
			message string
		}{
			{"unknown role", rolesBody(target.ID, "SUPERUSER", "ADD"), "invalid role"},
			{"unknown operation", rolesBody(target.ID, "ADMIN", "TOGGLE"), "invalid operation"},
			{"unknown user", rolesBody("no-such-user", "ADMIN", "ADD"), "invalid userId"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				rec := postJSON(t, f.server, server.RouteModifyUserRoles, tc.body, func(r *http.Request) {
					r.Header.Set("Authorization", f.bearerToken(t, caller))
				})
				var resp rolesResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.False(t, resp.OK)
				require.Equal(t, tc.message, resp.Message)
			})
		}
	})
}

func TestGraphQLEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "johndoe")

	t.Run("open query", func(t *testing.T) {
		rec := postJSON(t, f.server, server.RouteGraphQL, graph.Request{Query: `{ hello }`}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp graph.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Empty(t, resp.Errors)
		require.Equal(t, "Hello", resp.Data["hello"])
	})

	t.Run("bearer token reaches the guards", func(t *testing.T) {
		rec := postJSON(t, f.server, server.RouteGraphQL, graph.Request{Query: `{ me { username } }`}, func(r *http.Request) {
			r.Header.Set("Authorization", f.bearerToken(t, user))
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp graph.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Empty(t, resp.Errors)

		me, ok := resp.Data["me"].(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "johndoe", me["username"])
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, server.RouteGraphQL, bytes.NewBufferString("not json"))
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, server.RouteGraphQL, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, server.RouteGraphQL, nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
