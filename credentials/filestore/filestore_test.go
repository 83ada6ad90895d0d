package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/vinnote-client/credentials"
	"github.com/jrsteele09/vinnote-client/credentials/filestore"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	s, err := filestore.New(path, "correct horse")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, credentials.AccessTokenKey, "access-1"))
	require.NoError(t, s.Set(ctx, credentials.OnboardingDoneKey, "true"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := filestore.New(path, "correct horse")
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, credentials.AccessTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "access-1", v)
}

func TestStore_ValuesAreNotPlaintext(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	s, err := filestore.New(path, "pw")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, credentials.RefreshTokenKey, "super-secret-refresh"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "super-secret-refresh")
}

func TestStore_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	s, err := filestore.New(path, "right")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, credentials.AccessTokenKey, "a"))

	_, err = filestore.New(path, "wrong")
	require.ErrorIs(t, err, errors.ErrWrongPassword)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := filestore.New(path, "pw")
	require.ErrorIs(t, err, errors.ErrStoreCorrupt)
}

func TestStore_RemoveAndClearAll(t *testing.T) {
	ctx := context.Background()
	s, err := filestore.New(filepath.Join(t.TempDir(), "credentials.json"), "pw")
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, credentials.UserKey), "removing a missing key is fine")

	for _, k := range []credentials.Key{credentials.AccessTokenKey, credentials.RefreshTokenKey, credentials.UserKey, credentials.OnboardingDoneKey} {
		require.NoError(t, s.Set(ctx, k, string(k)+"-value"))
	}
	require.NoError(t, s.ClearAll(ctx))

	for _, k := range credentials.CredentialKeys {
		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		require.False(t, ok, k)
	}
	v, ok, err := s.Get(ctx, credentials.OnboardingDoneKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "onboarding_done-value", v)
}

func TestNew_RequiresArguments(t *testing.T) {
	_, err := filestore.New("", "pw")
	require.Error(t, err)
	_, err = filestore.New(filepath.Join(t.TempDir(), "c.json"), "")
	require.Error(t, err)
}

// breakDir swaps dir for a plain file so writes into it fail, and returns a func undoing it.
func breakDir(t *testing.T, dir string) func() {
	t.Helper()
	moved := dir + ".moved"
	require.NoError(t, os.Rename(dir, moved))
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o600))
	return func() {
		require.NoError(t, os.Remove(dir))
		require.NoError(t, os.Rename(moved, dir))
	}
}

func TestStore_FailedWritesKeepMemoryAndDiskInStep(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "store")
	path := filepath.Join(dir, "credentials.json")

	s, err := filestore.New(path, "pw")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, credentials.RefreshTokenKey, "refresh-1"))
	require.NoError(t, s.Set(ctx, credentials.AccessTokenKey, "access-1"))

	restore := breakDir(t, dir)
	require.Error(t, s.ClearAll(ctx))
	require.Error(t, s.Remove(ctx, credentials.AccessTokenKey))
	restore()

	for _, store := range []*filestore.Store{s, reopen(t, path)} {
		v, ok, err := store.Get(ctx, credentials.AccessTokenKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "access-1", v)

		v, ok, err = store.Get(ctx, credentials.RefreshTokenKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "refresh-1", v)
	}

	require.NoError(t, s.ClearAll(ctx))
	_, ok, err := reopen(t, path).Get(ctx, credentials.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func reopen(t *testing.T, path string) *filestore.Store {
	t.Helper()
	s, err := filestore.New(path, "pw")
	require.NoError(t, err)
	return s
}
