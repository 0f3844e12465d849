// Package redis provides a go-datastore implementation backed by Redis, used
// to keep the autosaved document in a Redis instance.
package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	"github.com/pkg/errors"
)

var _ ds.Datastore = (*Datastore)(nil)

// Options configures the Redis datastore
type Options struct {
	// TTL expires records after the given duration; zero keeps them forever
	TTL time.Duration
	// Prefix is prepended to every datastore key
	Prefix string
}

// DefaultOptions returns options that keep records forever under "emojiart"
func DefaultOptions() *Options {
	return &Options{
		TTL:    0,
		Prefix: "emojiart",
	}
}

// Datastore stores go-datastore records as Redis strings
type Datastore struct {
	client *goredis.Client
	ttl    time.Duration
	prefix string
	mu     sync.Mutex
}

// NewDatastore creates a datastore on an existing client
func NewDatastore(client *goredis.Client, opts *Options) (*Datastore, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Datastore{
		client: client,
		ttl:    opts.TTL,
		prefix: strings.TrimSuffix(opts.Prefix, "/"),
	}, nil
}

// Dial connects to addr and verifies the connection with PING
func Dial(ctx context.Context, addr, password string, db int, opts *Options) (*Datastore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", addr)
	}
	return NewDatastore(client, opts)
}

func (rd *Datastore) redisKey(key ds.Key) string {
	return rd.prefix + key.String()
}

func (rd *Datastore) datastoreKey(redisKey string) string {
	return strings.TrimPrefix(redisKey, rd.prefix)
}

// Put stores a value
func (rd *Datastore) Put(ctx context.Context, key ds.Key, value []byte) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	return rd.client.Set(ctx, rd.redisKey(key), value, rd.ttl).Err()
}

// Get reads a value
func (rd *Datastore) Get(ctx context.Context, key ds.Key) ([]byte, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	data, err := rd.client.Get(ctx, rd.redisKey(key)).Bytes()
	if err == goredis.Nil {
		return nil, ds.ErrNotFound
	}
	return data, err
}

// Has reports whether the key exists
func (rd *Datastore) Has(ctx context.Context, key ds.Key) (bool, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	n, err := rd.client.Exists(ctx, rd.redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSize returns the length of the stored value
func (rd *Datastore) GetSize(ctx context.Context, key ds.Key) (int, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	n, err := rd.client.Exists(ctx, rd.redisKey(key)).Result()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ds.ErrNotFound
	}

	size, err := rd.client.StrLen(ctx, rd.redisKey(key)).Result()
	if err != nil {
		return 0, err
	}
	return int(size), nil
}

// Delete removes a key; deleting a missing key is not an error
func (rd *Datastore) Delete(ctx context.Context, key ds.Key) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	return rd.client.Del(ctx, rd.redisKey(key)).Err()
}

// Query scans keys under the query prefix; filters, orders, offset and limit
// are applied in memory
func (rd *Datastore) Query(ctx context.Context, q dsq.Query) (dsq.Results, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	pattern := rd.prefix + q.Prefix + "*"

	var keys []string
	var cursor uint64
	for {
		var batch []string
		var err error
		batch, cursor, err = rd.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if cursor == 0 {
			break
		}
	}

	entries := make([]dsq.Entry, 0, len(keys))
	for _, key := range keys {
		entry := dsq.Entry{Key: rd.datastoreKey(key)}
		if !q.KeysOnly {
			value, err := rd.client.Get(ctx, key).Bytes()
			if err == goredis.Nil {
				// expired between SCAN and GET
				continue
			}
			if err != nil {
				return nil, err
			}
			entry.Value = value
			entry.Size = len(value)
		}
		entries = append(entries, entry)
	}

	base := dsq.Query{Prefix: q.Prefix, KeysOnly: q.KeysOnly}
	return dsq.NaiveQueryApply(q, dsq.ResultsWithEntries(base, entries)), nil
}

// Sync is a no-op; Redis persistence is configured on the server
func (rd *Datastore) Sync(ctx context.Context, prefix ds.Key) error {
	return nil
}

// Close closes the Redis client
func (rd *Datastore) Close() error {
	return rd.client.Close()
}
