package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/jrsteele09/vinnote-client/api"
	"github.com/jrsteele09/vinnote-client/credentials"
	"github.com/jrsteele09/vinnote-client/credentials/filestore"
	"github.com/jrsteele09/vinnote-client/feed"
	"github.com/jrsteele09/vinnote-client/internal/config"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/session"
	"github.com/rs/zerolog/log"
)

var errNotLoggedIn = errors.New("not logged in, run `vinnote login` first")

// app holds the wired client for one command invocation.
type app struct {
	config  config.Config
	creds   *credentials.Credentials
	client  *api.Client
	session *session.Manager
}

func newApp(envFile, configFile string) (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "loading %s", envFile)
		}
	}

	var (
		c   config.Config
		err error
	)
	if configFile != "" {
		c, err = config.Load(configFile)
	} else {
		c, err = config.New()
	}
	if err != nil {
		return nil, err
	}
	setupLogging(c)

	path := c.GetCredentialsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	store, err := filestore.New(path, c.GetStorePassphrase())
	if err != nil {
		return nil, err
	}
	creds := credentials.New(store)

	client, err := api.New(c.GetBaseURL(), creds,
		api.WithHTTPClient(&http.Client{Timeout: c.GetRequestTimeout()}),
		api.WithUserAgent(c.GetUserAgent()),
	)
	if err != nil {
		return nil, err
	}

	manager, err := session.New(client, creds)
	if err != nil {
		return nil, err
	}

	return &app{config: c, creds: creds, client: client, session: manager}, nil
}

// newFeed builds a synchronizer from the feed settings. With mock set no request leaves the
// process and the seed file is the whole feed.
func (a *app) newFeed(mock bool) (*feed.Synchronizer, error) {
	throttle := feed.NewThrottle(
		feed.WithDebounce(a.config.GetFeedDebounce()),
		feed.WithCooldown(a.config.GetFeedCooldown()),
	)

	opts := []feed.Option{feed.WithPageSize(a.config.GetFeedPageSize())}
	if seedFile := a.config.GetFeedSeedFile(); seedFile != "" {
		seed, err := feed.LoadSeedFile(seedFile)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", seedFile).Int("tastings", len(seed)).Msg("loaded feed seed")
		opts = append(opts, feed.WithSeed(seed))
	}
	if mock {
		opts = append(opts, feed.WithMockSource())
	}
	return feed.New(a.client, throttle, opts...)
}

// requireSession restores the stored session. A failed restore has already cleared the
// stored credentials, so the only remedy is a new login.
func (a *app) requireSession(ctx context.Context) error {
	if a.session.RestoreSession(ctx) {
		return nil
	}
	return errNotLoggedIn
}
