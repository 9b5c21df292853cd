package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	originVar      = "ORIGIN_ENDPOINT"
	databaseDSNVar = "DATABASE_DSN"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "4000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Community API")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetOriginEndpoint returns the front-end origin that external-login
// redirects target and that CORS allows credentials for.
func (EnvVars) GetOriginEndpoint() string {
	return GetEnv(originVar, "http://localhost:3000")
}

// GetDatabaseDSN returns the postgres connection string. An empty value
// means the server runs on in-memory stores.
func (EnvVars) GetDatabaseDSN() string {
	return GetEnv(databaseDSNVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
