package config

import (
	"strconv"
	"time"
)

type SecurityConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetRefreshCookieName() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetAccessTokenSecret() string {
	return GetEnv("ACCESS_TOKEN_SECRET", "")
}

func (Security) GetRefreshTokenSecret() string {
	return GetEnv("REFRESH_TOKEN_SECRET", "")
}

func (Security) GetRefreshCookieName() string {
	return GetEnv("REFRESH_COOKIE_NAME", "jid")
}

func (Security) GetAccessTokenExpiry() time.Duration {
	return durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute)
}

func (Security) GetRefreshTokenExpiry() time.Duration {
	return durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
