// Package filesource reads the catalog snapshot from a local file and can
// watch it for changes.
package filesource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.CatalogSource   = (*Source)(nil)
	_ driven.WatchableSource = (*Source)(nil)
)

// DefaultSettle is how long the file must stay quiet before a change is
// reported. Editors and copy tools often write in several steps.
const DefaultSettle = 250 * time.Millisecond

// Source reads a snapshot file.
type Source struct {
	path   string
	settle time.Duration
}

// New creates a source for path.
func New(path string) *Source {
	return &Source{
		path:   filepath.Clean(path),
		settle: DefaultSettle,
	}
}

// Name returns the file path.
func (s *Source) Name() string {
	return s.path
}

// Fetch reads the whole file.
func (s *Source) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	return data, nil
}

// Watch reports changes to the file. The parent directory is watched so
// atomic replace-by-rename is noticed too. Bursts of events are coalesced
// into a single signal.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	out := make(chan struct{}, 1)
	go s.run(ctx, watcher, out)
	return out, nil
}

func (s *Source) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer watcher.Close()

	log := logger.Component("filesource")
	timer := time.NewTimer(s.settle)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if s.relevant(event) {
				timer.Reset(s.settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "path", s.path, "error", err)
		case <-timer.C:
			select {
			case out <- struct{}{}:
			default:
				// A signal is already pending
			}
		}
	}
}

// relevant reports whether event changes the snapshot contents.
func (s *Source) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != s.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
