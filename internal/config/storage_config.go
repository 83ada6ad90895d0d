package config

import (
	"os"
	"path/filepath"
)

type StorageConfig interface {
	GetCredentialsPath() string
	GetStorePassphrase() string
}

type Storage struct {
	Path       string `yaml:"path" env:"VINNOTE_CREDENTIALS" env-description:"credential file, defaults to the user config dir"`
	Passphrase string `yaml:"passphrase" env:"VINNOTE_STORE_KEY" env-default:"vinnote-local" env-description:"passphrase protecting the credential file"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetCredentialsPath() string {
	if s.Path != "" {
		return s.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "vinnote", "credentials.json")
}

func (s Storage) GetStorePassphrase() string {
	return s.Passphrase
}
