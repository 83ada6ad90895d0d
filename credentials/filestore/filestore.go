// Package filestore keeps credentials in a single JSON file on disk. Every value is sealed
// with XChaCha20-Poly1305 under a key derived from a passphrase with Argon2id.
package filestore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/vinnote-client/credentials"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	fileVersion = 1
	saltLength  = 16
	checkValue  = "vinnote"

	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 2
)

var _ credentials.Store = (*Store)(nil)

type fileFormat struct {
	Version int               `json:"version"`
	Salt    string            `json:"salt"`
	Check   string            `json:"check"`
	Entries map[string]string `json:"entries"`
}

// Store is a credentials.Store persisted to one file.
type Store struct {
	path    string
	aead    cipher.AEAD
	salt    []byte
	check   string
	entries map[credentials.Key]string // sealed, base64 encoded
	lock    sync.RWMutex
}

// New opens the store at path, creating it on first write. An existing file must have been
// written with the same passphrase.
func New(path, passphrase string) (*Store, error) {
	if path == "" {
		return nil, errors.New("[filestore.New] path is required")
	}
	if passphrase == "" {
		return nil, errors.New("[filestore.New] passphrase is required")
	}

	s := &Store{path: path, entries: make(map[credentials.Key]string)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.salt = make([]byte, saltLength)
		if _, err := rand.Read(s.salt); err != nil {
			return nil, fmt.Errorf("[filestore.New] generating salt: %w", err)
		}
		if err := s.deriveKey(passphrase); err != nil {
			return nil, err
		}
		check, err := s.seal("check", checkValue)
		if err != nil {
			return nil, err
		}
		s.check = check
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("[filestore.New] reading %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "[filestore.New] %s: %v", path, err)
	}
	if f.Version != fileVersion {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "[filestore.New] unsupported version %d", f.Version)
	}
	if s.salt, err = base64.StdEncoding.DecodeString(f.Salt); err != nil || len(s.salt) != saltLength {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "[filestore.New] bad salt")
	}
	if err := s.deriveKey(passphrase); err != nil {
		return nil, err
	}
	if v, err := s.open("check", f.Check); err != nil || v != checkValue {
		return nil, errors.ErrWrongPassword
	}

	s.check = f.Check
	for k, v := range f.Entries {
		s.entries[credentials.Key(k)] = v
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key credentials.Key) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sealed, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	v, err := s.open(string(key), sealed)
	if err != nil {
		return "", false, errors.Wrapf(errors.ErrStoreCorrupt, "[filestore.Get] %s", key)
	}
	return v, true, nil
}

func (s *Store) Set(_ context.Context, key credentials.Key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	sealed, err := s.seal(string(key), value)
	if err != nil {
		return err
	}

	prev, had := s.entries[key]
	s.entries[key] = sealed
	if err := s.persist(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key credentials.Key) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	prev, ok := s.entries[key]
	if !ok {
		return nil
	}
	delete(s.entries, key)
	if err := s.persist(); err != nil {
		s.entries[key] = prev
		return err
	}
	return nil
}

func (s *Store) ClearAll(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	removed := make(map[credentials.Key]string, len(credentials.CredentialKeys))
	for _, k := range credentials.CredentialKeys {
		if v, ok := s.entries[k]; ok {
			removed[k] = v
			delete(s.entries, k)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := s.persist(); err != nil {
		for k, v := range removed {
			s.entries[k] = v
		}
		return err
	}
	return nil
}

func (s *Store) deriveKey(passphrase string) error {
	key := argon2.IDKey([]byte(passphrase), s.salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("[filestore] cipher: %w", err)
	}
	s.aead = aead
	return nil
}

// seal binds the ciphertext to its key name through the additional data.
func (s *Store) seal(name, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[filestore] nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), []byte(name))
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Store) open(name, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errors.ErrStoreCorrupt
	}
	nonce, ct := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ct, []byte(name))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// persist writes to a temp file in the same directory and renames it over the old one.
func (s *Store) persist() error {
	f := fileFormat{
		Version: fileVersion,
		Salt:    base64.StdEncoding.EncodeToString(s.salt),
		Check:   s.check,
		Entries: make(map[string]string, len(s.entries)),
	}
	for k, v := range s.entries {
		f.Entries[string(k)] = v
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore.persist] marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[filestore.persist] mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("[filestore.persist] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore.persist] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore.persist] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore.persist] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore.persist] rename: %w", err)
	}
	return nil
}
