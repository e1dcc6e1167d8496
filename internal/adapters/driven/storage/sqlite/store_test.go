package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/dev/null/cannot/create")
	assert.Error(t, err)
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, ".pricecollect", "data", DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "observations", "[]"))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	val, ok, err := second.Get(context.Background(), "observations")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", val)

	var count int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, ok, err := store.Get(ctx, "observations")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "observations", `{"version":1}`))
	require.NoError(t, store.Set(ctx, "observations", `{"version":1,"observations":[]}`))

	val, ok, err := store.Get(ctx, "observations")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1,"observations":[]}`, val)

	require.NoError(t, store.Remove(ctx, "observations"))
	_, ok, err = store.Get(ctx, "observations")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Remove(ctx, "never-set"))
}

func TestStore_ClosedDatabase(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, _, err = store.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "k", "v"))
	assert.Error(t, store.Remove(ctx, "k"))
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, "observations", string(rune('a'+n))))
		}(i)
	}
	wg.Wait()

	val, ok, err := store.Get(ctx, "observations")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, val, 1)
}

func TestStore_MigrateBadSQL(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"002_broken.up.sql": &fstest.MapFile{Data: []byte("NOT VALID SQL")},
		"notes.txt":         &fstest.MapFile{Data: []byte("ignored")},
	}
	err := store.migrate(fsys)
	assert.Error(t, err)
}
