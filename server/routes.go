package server

import "net/http"

func (s *Server) initRoutes() {
	// External login
	s.RegisterRouteHandler("GET "+RouteGithubStart, ChainMiddleware(s.GithubStartHandler(), s.baseMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGithubCallback, ChainMiddleware(s.GithubCallbackHandler(), s.baseMiddleware()...))

	// Session and role endpoints
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteModifyUserRoles, ChainMiddleware(s.ModifyUserRolesHandler(), s.APIMiddleware()...))

	// Query endpoint, admission controlled inside the executor
	s.RegisterRouteHandler("POST "+RouteGraphQL, ChainMiddleware(s.GraphQLHandler(), s.APIMiddleware()...))

	// CORS preflight
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, s.APIMiddleware()...))
}
