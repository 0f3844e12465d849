// Package datastore persists the autosaved document in any go-datastore
// implementation.
package datastore

import (
	"context"
	"time"

	ds "github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"emojiart/internal/domain"
)

var log = logging.Logger("emojiart/store/datastore")

// DefaultKey is where the document lives when no key is configured
const DefaultKey = "/emojiart/autosaved"

// DocumentStore is a go-datastore based implementation of domain.DocumentStore
type DocumentStore struct {
	store   ds.Datastore
	key     ds.Key
	timeout time.Duration
}

// NewDocumentStore wraps a datastore; an empty key means DefaultKey
func NewDocumentStore(store ds.Datastore, key string) (*DocumentStore, error) {
	if store == nil {
		return nil, errors.New("datastore is nil")
	}
	if key == "" {
		key = DefaultKey
	}
	return &DocumentStore{
		store:   store,
		key:     ds.NewKey(key),
		timeout: 10 * time.Second,
	}, nil
}

// Key returns the datastore key holding the document
func (s *DocumentStore) Key() ds.Key {
	return s.key
}

// Save overwrites the document record
func (s *DocumentStore) Save(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Put(ctx, s.key, data); err != nil {
		return errors.Wrapf(domain.ErrWrite, "put %s: %v", s.key, err)
	}
	if err := s.store.Sync(ctx, s.key); err != nil {
		return errors.Wrapf(domain.ErrWrite, "sync %s: %v", s.key, err)
	}

	log.Debugw("document written", "key", s.key.String(), "bytes", len(data))
	return nil
}

// Load reads the document record
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get %s", s.key)
	}
	return data, nil
}

// Close closes the underlying datastore
func (s *DocumentStore) Close() error {
	return s.store.Close()
}
