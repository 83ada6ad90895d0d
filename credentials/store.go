package credentials

import "context"

// Key names a value held by a Store.
type Key string

const (
	AccessTokenKey    Key = "access_token"
	RefreshTokenKey   Key = "refresh_token"
	UserKey           Key = "user_data"
	OnboardingDoneKey Key = "onboarding_done"
)

// CredentialKeys are the keys removed by ClearAll. The onboarding flag outlives a session.
var CredentialKeys = []Key{AccessTokenKey, RefreshTokenKey, UserKey}

// Store is durable key/value storage that survives process restarts.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key Key) (string, bool, error)

	// Set stores value under key
	Set(ctx context.Context, key Key, value string) error

	// Remove deletes key, a missing key is not an error
	Remove(ctx context.Context, key Key) error

	// ClearAll removes every key in CredentialKeys
	ClearAll(ctx context.Context) error
}
