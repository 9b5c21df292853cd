package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	ExternalLoginConfig
	GraphConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetOriginEndpoint() string
	GetDatabaseDSN() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	ExternalLogin
	Graph
}

func New() Config {
	return mainConfig{}
}
