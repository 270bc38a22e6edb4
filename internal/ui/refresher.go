package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// Store writes have no cross-process notification of their own, so the
// interactive view refreshes from two sources: a filesystem watch on the
// store file for near-immediate pickup, and a cron fallback tick for
// filesystems where change events are unreliable.

const watchDebounce = 500 * time.Millisecond

// RefreshMsg asks the event loop to reload the collection and rerender.
type RefreshMsg struct{}

type Refresher struct {
	watcher  *fsnotify.Watcher
	cron     *cron.Cron
	debounce *Debouncer
	dbPath   string
	notify   func(msg any)
	log      *slog.Logger
	done     chan struct{}
}

// NewRefresher watches the directory holding dbPath and schedules the cron
// fallback with spec. notify receives RefreshMsg values and must be safe to
// call from any goroutine (tea.Program.Send is).
func NewRefresher(
	dbPath string,
	spec string,
	notify func(msg any),
	log *slog.Logger,
) (*Refresher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	r := &Refresher{
		watcher:  watcher,
		cron:     cron.New(),
		debounce: NewDebouncer(watchDebounce),
		dbPath:   dbPath,
		notify:   notify,
		log:      log,
		done:     make(chan struct{}),
	}

	if _, err := r.cron.AddFunc(spec, func() {
		notify(RefreshMsg{})
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule refresh: %w", err)
	}

	return r, nil
}

func (r *Refresher) Start(ctx context.Context) error {
	// Watch the directory: sqlite rewrites sidecar files (-wal, -journal)
	// rather than always touching the main file in place.
	dir := filepath.Dir(r.dbPath)
	if err := r.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go r.run(ctx)
	r.cron.Start()

	return nil
}

func (r *Refresher) Stop() {
	r.cron.Stop()
	close(r.done)

	if err := r.watcher.Close(); err != nil {
		r.log.Warn("Failed to close watcher",
			"error", err)
	}

	r.debounce.Cancel()
}

func (r *Refresher) run(ctx context.Context) {
	base := filepath.Base(r.dbPath)

	for {
		select {
		case <-ctx.Done():
			return

		case <-r.done:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}

			r.debounce.Trigger(func() {
				r.notify(RefreshMsg{})
			})

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}

			r.log.WarnContext(ctx, "Watcher error",
				"error", err,
				"dbPath", r.dbPath)
		}
	}
}
