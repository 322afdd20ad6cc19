package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)

	payload := []byte(`{"version":1,"data":[]}`)
	require.NoError(t, store.Put(ctx, "users", payload))

	got, found, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, "users"))
	_, found, err = store.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "users"))
}

func TestFileStoreOverwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "controls", []byte("one")))
	require.NoError(t, store.Put(ctx, "controls", []byte("two")))

	got, found, err := store.Get(ctx, "controls")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("two"), got)
}
