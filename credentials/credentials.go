package credentials

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/users"
)

// Credentials is the typed view of a Store used by the session and the API client.
type Credentials struct {
	store Store
}

// New wraps store.
func New(store Store) *Credentials {
	return &Credentials{store: store}
}

// Store exposes the underlying key/value store.
func (c *Credentials) Store() Store {
	return c.store
}

// AccessToken returns the stored bearer token, or "" when none is stored.
func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	return c.get(ctx, AccessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (c *Credentials) RefreshToken(ctx context.Context) (string, error) {
	return c.get(ctx, RefreshTokenKey)
}

// SetTokens persists a token pair. The refresh token is written first so a stored access
// token always has its refresh token, even if the second write fails.
func (c *Credentials) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return errors.New("[Credentials.SetTokens] both tokens are required")
	}
	if err := c.store.Set(ctx, RefreshTokenKey, refreshToken); err != nil {
		return errors.Wrapf(err, "[Credentials.SetTokens] refresh token")
	}
	if err := c.store.Set(ctx, AccessTokenKey, accessToken); err != nil {
		return errors.Wrapf(err, "[Credentials.SetTokens] access token")
	}
	return nil
}

// User returns the cached profile snapshot, nil when none is cached.
func (c *Credentials) User(ctx context.Context) (*users.Profile, error) {
	raw, err := c.get(ctx, UserKey)
	if err != nil || raw == "" {
		return nil, err
	}

	var p users.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "[Credentials.User] %v", err)
	}
	return &p, nil
}

// SetUser caches a profile snapshot.
func (c *Credentials) SetUser(ctx context.Context, p *users.Profile) error {
	if p == nil {
		return c.store.Remove(ctx, UserKey)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "[Credentials.SetUser] marshal")
	}
	return c.store.Set(ctx, UserKey, string(b))
}

// Clear removes the access token first, then the rest of the credential keys.
func (c *Credentials) Clear(ctx context.Context) error {
	if err := c.store.Remove(ctx, AccessTokenKey); err != nil {
		return errors.Wrapf(err, "[Credentials.Clear] access token")
	}
	return c.store.ClearAll(ctx)
}

func (c *Credentials) SetOnboardingDone(ctx context.Context) error {
	return c.store.Set(ctx, OnboardingDoneKey, "true")
}

func (c *Credentials) OnboardingDone(ctx context.Context) (bool, error) {
	v, err := c.get(ctx, OnboardingDoneKey)
	return v == "true", err
}

func (c *Credentials) get(ctx context.Context, key Key) (string, error) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return "", errors.Wrapf(err, "[Credentials] reading %s", key)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}
