package memory

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emojiart/internal/domain"
)

func TestDocumentStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	_, err := store.Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	payload := []byte(`{"emojis":[]}`)
	require.NoError(t, store.Save(ctx, payload))
	payload[0] = 'x'

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"emojis":[]}`, string(data))
	assert.Equal(t, 1, store.Writes())
}
