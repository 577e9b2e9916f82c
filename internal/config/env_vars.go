package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	toolURLEnvVar = "LTI_TOOL_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "4000")
	if port != "" || port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "BluNote LTI")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetToolURL returns the public base URL of this tool (e.g., "https://tool.example.com").
// This is what platforms redirect back to, so it must match the registered tool URL.
func (EnvVars) GetToolURL() string {
	return GetEnv(toolURLEnvVar, "http://localhost:4000")
}

// GetFrontendURL returns where the launch bootstrap page sends the browser,
// i.e. the ChatKit frontend.
func (EnvVars) GetFrontendURL() string {
	return GetEnv("FRONTEND_URL", "http://localhost:5173")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
