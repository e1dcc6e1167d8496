package filesource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

func TestSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database_price.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	src := New(path)
	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, path, src.Name())
}

func TestSource_Fetch_Missing(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "missing.json"))

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestSource_Relevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	src := New(path)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"write and chmod", fsnotify.Event{Name: path, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, src.relevant(tt.event))
		})
	}
}

func TestSource_Watch_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	src := New(path)
	src.settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"codigoean":"1"}]`), 0644))
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change signal")
	}

	select {
	case <-changes:
		t.Fatal("expected writes to be coalesced into one signal")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSource_Watch_MissingDirectory(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope", "catalog.json"))

	_, err := src.Watch(context.Background())
	assert.Error(t, err)
}
