package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/communityhq/community-api/auth"
	"github.com/communityhq/community-api/graph"
	"github.com/communityhq/community-api/internal/config"
)

const githubUserEndpoint = "https://api.github.com/user"

type Server struct {
	env           string
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	auth          *auth.Service
	executor      *graph.Executor
	oauthConfig   *oauth2.Config
	githubUserURL string
}

func New(cfg config.Config, authService *auth.Service, executor *graph.Executor) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     authService,
		executor: executor,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GetGithubClientID(),
			ClientSecret: cfg.GetGithubClientSecret(),
			RedirectURL:  cfg.GetGithubCallbackURL(),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		githubUserURL: githubUserEndpoint,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}
