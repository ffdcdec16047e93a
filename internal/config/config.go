package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	CheckoutConfig
	SessionConfig
	NotifyConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Checkout
	Session
	Notify
}

func New() Config {
	// .env is a development convenience; missing file is not an error.
	_ = godotenv.Load()
	return mainConfig{}
}
