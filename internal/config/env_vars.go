package config

import (
	"os"
)

const (
	appNameVar    = "APP_NAME"
	apiBaseURLVar = "API_BASE_URL"
	folderEnvVar  = "FOLDER"
	localeEnvVar  = "LOCALE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Custody Console")
}

// GetAPIBaseURL returns the base URL of the custody platform REST API
// (e.g., "https://api.custody.example.com/api/v1")
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetLocale returns the language sent as Accept-Language on every request
func (EnvVars) GetLocale() string {
	return GetEnv(localeEnvVar, "en")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
