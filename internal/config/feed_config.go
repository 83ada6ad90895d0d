package config

import "time"

type FeedConfig interface {
	GetFeedPageSize() int
	GetFeedDebounce() time.Duration
	GetFeedCooldown() time.Duration
	GetFeedSeedFile() string
}

type Feed struct {
	PageSize int           `yaml:"page_size" env:"VINNOTE_FEED_PAGE_SIZE" env-default:"20" env-description:"tastings requested per page"`
	Debounce time.Duration `yaml:"debounce" env:"VINNOTE_FEED_DEBOUNCE" env-default:"1500ms" env-description:"minimum gap between feed requests"`
	Cooldown time.Duration `yaml:"cooldown" env:"VINNOTE_FEED_COOLDOWN" env-default:"15s" env-description:"back-off after a 429 from the feed"`
	SeedFile string        `yaml:"seed_file" env:"VINNOTE_FEED_SEED" env-description:"optional JSON or YAML file with fallback tastings"`
}

var _ FeedConfig = Feed{}

func (f Feed) GetFeedPageSize() int {
	if f.PageSize <= 0 {
		return 20
	}
	return f.PageSize
}

func (f Feed) GetFeedDebounce() time.Duration {
	return f.Debounce
}

func (f Feed) GetFeedCooldown() time.Duration {
	return f.Cooldown
}

func (f Feed) GetFeedSeedFile() string {
	return f.SeedFile
}
