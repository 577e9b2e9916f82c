package config

type Config interface {
	EnvConfig
	CorsConfig
	LTIConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetToolURL() string
	GetFrontendURL() string
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
	LTI
	Security
}

func New() Config {
	return mainConfig{}
}
