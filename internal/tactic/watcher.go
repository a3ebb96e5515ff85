package tactic

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"trunckernel/internal/logging"
)

// GoalWatcher re-runs a callback when a goal file changes. Editors often
// replace a file instead of writing it, so the parent directory is watched
// and events are filtered by name.
type GoalWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	onChange    func(ctx context.Context, path string)
	debounceDur time.Duration
	pending     time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewGoalWatcher creates a watcher for path.
func NewGoalWatcher(path string, onChange func(ctx context.Context, path string)) (*GoalWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	return &GoalWatcher{
		watcher:     watcher,
		path:        abs,
		onChange:    onChange,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (gw *GoalWatcher) Start(ctx context.Context) error {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.running {
		return nil
	}
	if err := gw.watcher.Add(filepath.Dir(gw.path)); err != nil {
		return err
	}
	gw.running = true
	logging.Tactic("watching %s", gw.path)
	go gw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (gw *GoalWatcher) Stop() {
	gw.mu.Lock()
	if !gw.running {
		gw.mu.Unlock()
		gw.watcher.Close()
		return
	}
	gw.running = false
	gw.mu.Unlock()

	close(gw.stopCh)
	<-gw.doneCh
	if err := gw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryTactic).Error("goal watcher: error closing watcher: %v", err)
	}
}

func (gw *GoalWatcher) run(ctx context.Context) {
	defer close(gw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-gw.stopCh:
			return
		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != gw.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logging.TacticDebug("goal watcher: %s %s", event.Op, event.Name)
			gw.pending = time.Now()
		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryTactic).Error("goal watcher: %v", err)
		case <-ticker.C:
			if !gw.pending.IsZero() && time.Since(gw.pending) >= gw.debounceDur {
				gw.pending = time.Time{}
				gw.onChange(ctx, gw.path)
			}
		}
	}
}
