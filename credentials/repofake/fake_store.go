package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/vinnote-client/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// Op records one mutating call made against a FakeStore.
type Op struct {
	Kind string // "set", "remove" or "clear"
	Key  credentials.Key
}

type FakeStore struct {
	values   map[credentials.Key]string
	ops      []Op
	failSets map[credentials.Key]error
	lock     sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values:   make(map[credentials.Key]string),
		failSets: make(map[credentials.Key]error),
	}
}

// Seed writes values without recording operations.
func (fs *FakeStore) Seed(values map[credentials.Key]string) *FakeStore {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	for k, v := range values {
		fs.values[k] = v
	}
	return fs
}

// FailSet makes every later Set on key return err.
func (fs *FakeStore) FailSet(key credentials.Key, err error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failSets[key] = err
}

func (fs *FakeStore) Get(_ context.Context, key credentials.Key) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FakeStore) Set(_ context.Context, key credentials.Key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if err := fs.failSets[key]; err != nil {
		return err
	}
	fs.values[key] = value
	fs.ops = append(fs.ops, Op{Kind: "set", Key: key})
	return nil
}

func (fs *FakeStore) Remove(_ context.Context, key credentials.Key) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.values, key)
	fs.ops = append(fs.ops, Op{Kind: "remove", Key: key})
	return nil
}

func (fs *FakeStore) ClearAll(_ context.Context) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	for _, k := range credentials.CredentialKeys {
		delete(fs.values, k)
	}
	fs.ops = append(fs.ops, Op{Kind: "clear"})
	return nil
}

// Ops returns the recorded mutations in call order.
func (fs *FakeStore) Ops() []Op {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return append([]Op(nil), fs.ops...)
}

// Snapshot copies the current contents.
func (fs *FakeStore) Snapshot() map[credentials.Key]string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	out := make(map[credentials.Key]string, len(fs.values))
	for k, v := range fs.values {
		out[k] = v
	}
	return out
}
