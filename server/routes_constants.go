package server

const (
	RouteGithubStart     = "/auth/github"
	RouteGithubCallback  = "/auth/github/callback"
	RouteRefreshToken    = "/refresh_token"
	RouteModifyUserRoles = "/modify_user_roles"
	RouteGraphQL         = "/graphql"
)
