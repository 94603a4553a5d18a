package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "reminder:collection:garbage", "a"))
	require.NoError(t, s.Set(ctx, "reminder:special:xmas-trees", "b"))
	require.NoError(t, s.Set(ctx, "cache:saint-lazare", "c"))
	require.NoError(t, s.Set(ctx, "reminder:collection:garbage", "a2"))

	v, ok, err := s.Get(ctx, "reminder:collection:garbage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a2", v)

	keys, err := s.Keys(ctx, "reminder:")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminder:collection:garbage", "reminder:special:xmas-trees"}, keys)

	require.NoError(t, s.Delete(ctx, "reminder:collection:garbage"))
	require.NoError(t, s.Delete(ctx, "never-set"))
	keys, err = s.Keys(ctx, "reminder:")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminder:special:xmas-trees"}, keys)

	keys, err = s.Keys(ctx, "nothing:")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite(t *testing.T) {
	exerciseStore(t, newTestSQLite(t))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	st, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Set(ctx, "collection:recycling", "trigger-1"))
	require.NoError(t, st.Close())

	st, err = NewSQLite(path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))
	v, ok, err := st.Get(ctx, "collection:recycling")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "trigger-1", v)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("CIVICKEY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CIVICKEY_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close() //nolint:errcheck
	ns := "kvtest-" + t.Name()
	t.Cleanup(func() {
		keys, _ := rdb.Keys(context.Background(), ns+":*").Result()
		if len(keys) > 0 {
			rdb.Del(context.Background(), keys...)
		}
	})
	exerciseStore(t, NewRedis(rdb, ns))
}

func TestGlobEscape(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, globEscape("a*b?c[d]"))
}
