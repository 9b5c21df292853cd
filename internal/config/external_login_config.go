package config

type ExternalLoginConfig interface {
	GetGithubClientID() string
	GetGithubClientSecret() string
	GetGithubCallbackURL() string
}

type ExternalLogin struct{}

var _ ExternalLoginConfig = ExternalLogin{}

func (ExternalLogin) GetGithubClientID() string {
	return GetEnv("GITHUB_CLIENT_ID", "")
}

func (ExternalLogin) GetGithubClientSecret() string {
	return GetEnv("GITHUB_CLIENT_SECRET", "")
}

func (ExternalLogin) GetGithubCallbackURL() string {
	return GetEnv("GITHUB_CALLBACK_URL", "http://127.0.0.1:4000/auth/github/callback")
}
