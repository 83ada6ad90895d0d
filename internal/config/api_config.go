package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetUserAgent() string
}

type API struct {
	BaseURL   string        `yaml:"base_url" env:"VINNOTE_API_URL" env-default:"https://vinnote-api.up.railway.app/api/v1" env-description:"remote service base URL"`
	Timeout   time.Duration `yaml:"timeout" env:"VINNOTE_API_TIMEOUT" env-default:"0s" env-description:"HTTP client timeout, 0 keeps the transport default"`
	UserAgent string        `yaml:"user_agent" env:"VINNOTE_USER_AGENT" env-default:"vinnote-client" env-description:"User-Agent header"`
}

var _ APIConfig = API{}

// GetBaseURL returns the base URL without a trailing slash
func (a API) GetBaseURL() string {
	return strings.TrimRight(a.BaseURL, "/")
}

func (a API) GetRequestTimeout() time.Duration {
	return a.Timeout
}

func (a API) GetUserAgent() string {
	return a.UserAgent
}
