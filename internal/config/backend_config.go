package config

import (
	"strconv"
	"time"
)

// BackendConfig describes how to reach the remote dining/payment backend.
// The backend owns authentication, subscriptions and bookings; this gateway
// only proxies to it over REST.
type BackendConfig interface {
	GetBackendBaseURL() string
	GetBackendTimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendBaseURL() string {
	return GetEnv("BACKEND_BASE_URL", "http://localhost:9000")
}

// GetBackendTimeout bounds every outbound call. A hung backend must never
// leave a landing page waiting forever; a timeout surfaces as a terminal
// error state instead.
func (Backend) GetBackendTimeout() time.Duration {
	secs, err := strconv.Atoi(GetEnv("BACKEND_TIMEOUT_SECONDS", "10"))
	if err != nil || secs <= 0 {
		secs = 10
	}
	return time.Duration(secs) * time.Second
}
