package redis_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatforge/internal/domain"
	"threatforge/internal/repository"
	"threatforge/internal/repository/redis"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	repository.RunLayoutStoreContract(t, store, t.TempDir())
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("tf:"))
	ctx := context.Background()
	key := repository.LayoutKey{ModelPath: "/models/a.yaml", DiagramID: "main-dfd"}

	require.NoError(t, store.SaveLayout(ctx, key, &domain.DiagramLayout{DiagramID: "main-dfd", Viewport: domain.DefaultViewport()}))
	assert.True(t, mr.Exists("tf:"+key.ID()))
	assert.True(t, mr.Exists("tf:index:/models/a.yaml"))
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()
	modelPath := filepath.Join(t.TempDir(), "a.yaml")
	key := repository.LayoutKey{ModelPath: modelPath, DiagramID: "main-dfd"}

	require.NoError(t, store.SaveLayout(ctx, key, &domain.DiagramLayout{DiagramID: "main-dfd", Viewport: domain.DefaultViewport()}))

	ids, err := store.ListLayouts(ctx, modelPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"main-dfd"}, ids)

	mr.FastForward(2 * time.Minute)

	_, err = store.LoadLayout(ctx, key)
	assert.ErrorIs(t, err, domain.ErrLayoutNotFound)

	ids, err = store.ListLayouts(ctx, modelPath)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_ListLayouts(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	modelPath := filepath.Join(t.TempDir(), "a.yaml")

	for _, id := range []string{"main-dfd", "context"} {
		key := repository.LayoutKey{ModelPath: modelPath, DiagramID: id}
		require.NoError(t, store.SaveLayout(ctx, key, &domain.DiagramLayout{DiagramID: id, Viewport: domain.DefaultViewport()}))
	}

	ids, err := store.ListLayouts(ctx, modelPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"context", "main-dfd"}, ids)
}

func TestRedisStore_Ping(t *testing.T) {
	store, mr := newStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
