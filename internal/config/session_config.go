package config

import (
	"strconv"
	"time"
)

// SessionConfig controls the gateway's server-side token store.
type SessionConfig interface {
	// GetSessionStore selects the store backend: "memory" or "sqlite".
	GetSessionStore() string
	GetSessionDBPath() string
	GetSessionTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", "memory")
}

func (Session) GetSessionDBPath() string {
	return GetEnv("SESSION_DB_PATH", "./data/sessions.db")
}

func (Session) GetSessionTTL() time.Duration {
	hours, err := strconv.Atoi(GetEnv("SESSION_TTL_HOURS", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
