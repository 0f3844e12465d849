package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emojiart/internal/domain"
	"emojiart/internal/repository/datastore"
)

// newTestDatastore connects to EMOJIART_TEST_REDIS (default localhost:6379)
// and skips the test when no server is reachable
func newTestDatastore(t *testing.T) *Datastore {
	t.Helper()

	addr := os.Getenv("EMOJIART_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rd, err := Dial(ctx, addr, "", 0, &Options{Prefix: "emojiart-test-" + uuid.NewString()})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}

	t.Cleanup(func() {
		results, err := rd.Query(context.Background(), dsq.Query{KeysOnly: true})
		if err == nil {
			entries, _ := results.Rest()
			for _, e := range entries {
				rd.Delete(context.Background(), ds.NewKey(e.Key))
			}
		}
		rd.Close()
	})
	return rd
}

func TestDatastore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	rd := newTestDatastore(t)
	key := ds.NewKey("/doc")

	_, err := rd.Get(ctx, key)
	assert.Equal(t, ds.ErrNotFound, err)
	_, err = rd.GetSize(ctx, key)
	assert.Equal(t, ds.ErrNotFound, err)

	require.NoError(t, rd.Put(ctx, key, []byte("hello")))

	value, err := rd.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), value)

	size, err := rd.GetSize(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 5, size)

	has, err := rd.Has(ctx, key)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, rd.Delete(ctx, key))
	has, err = rd.Has(ctx, key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDatastore_Query(t *testing.T) {
	ctx := context.Background()
	rd := newTestDatastore(t)

	require.NoError(t, rd.Put(ctx, ds.NewKey("/a/1"), []byte("1")))
	require.NoError(t, rd.Put(ctx, ds.NewKey("/a/2"), []byte("2")))
	require.NoError(t, rd.Put(ctx, ds.NewKey("/b/1"), []byte("3")))

	results, err := rd.Query(ctx, dsq.Query{Prefix: "/a"})
	require.NoError(t, err)
	entries, err := results.Rest()
	require.NoError(t, err)

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, []string{"/a/1", "/a/2"}, keys)
}

func TestDatastore_BacksDocumentStore(t *testing.T) {
	ctx := context.Background()
	rd := newTestDatastore(t)

	store, err := datastore.NewDocumentStore(rd, "")
	require.NoError(t, err)

	_, err = store.Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Save(ctx, []byte(`{"background":{},"emojis":[]}`)))
	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"background":{},"emojis":[]}`, string(data))
}
