package config

import "strings"

type EnvVars struct {
	AppName  string `yaml:"name" env:"APP_NAME" env-default:"VinNote" env-description:"application name shown in the banner"`
	Env      string `yaml:"env" env:"ENV" env-default:"DEV" env-description:"deployment environment"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" env-description:"zerolog level (debug, info, warn, error)"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.LogLevel)
}
