package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, CartKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, CartKey, []byte(`[1]`)))
	require.NoError(t, s.Save(ctx, CartKey, []byte(`[1,2]`)))
	data, err := s.Load(ctx, CartKey)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))

	_, err = s.Load(ctx, SessionKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, CartKey))
	require.NoError(t, s.Delete(ctx, CartKey))
	_, err = s.Load(ctx, CartKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	exerciseStore(t, s)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files left behind")
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisStore(client, "storefront:alice")
	exerciseStore(t, s)

	require.NoError(t, s.Save(context.Background(), SessionKey, []byte(`{}`)))
	assert.True(t, mr.Exists("storefront:alice:user"))
}

func TestRedisStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.SetError("LOADING")

	_, err := NewRedisStore(client, "ns").Load(context.Background(), CartKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type line struct {
		ID  int64 `json:"id"`
		Qty int   `json:"qty"`
	}
	require.NoError(t, SaveJSON(ctx, s, CartKey, []line{{1, 2}, {3, 4}}))

	var got []line
	require.NoError(t, LoadJSON(ctx, s, CartKey, &got))
	assert.Equal(t, []line{{1, 2}, {3, 4}}, got)

	require.NoError(t, s.Save(ctx, CartKey, []byte(`{broken`)))
	err := LoadJSON(ctx, s, CartKey, &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, LoadJSON(ctx, s, SessionKey, &got), ErrNotFound)
}
