package corpus

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce is how long the watcher waits after the last filesystem
// event before firing. Editors produce bursts of writes per save.
const defaultDebounce = 2 * time.Second

// Watcher observes a corpus root and invokes a callback after changes settle.
// The serve command uses it to trigger sync passes automatically.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher over root that calls onChange after file
// events settle. A zero debounce uses the default.
func NewWatcher(root string, debounce time.Duration, onChange func(), logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until the context is canceled. New subdirectories are added to
// the watch set as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}

	w.logger.Info("watching corpus", zap.String("root", w.root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				// Newly created directories need their own watch.
				_ = w.addRecursive(fsw, event.Name)
			}
			w.logger.Debug("corpus event", zap.String("op", event.Op.String()), zap.String("path", event.Name))
			w.schedule()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may have vanished between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
}
