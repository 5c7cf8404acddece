package config

type Config interface {
	EnvConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetDataFolder() string
	GetLocale() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Session
}

func New() Config {
	return mainConfig{}
}
