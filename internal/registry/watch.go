package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"predictd/internal/common/fsutil"
	"predictd/pkg/types"
)

const defaultDebounce = 250 * time.Millisecond

// ReloadFunc receives a freshly loaded registry.
type ReloadFunc func([]types.ModelDefinition)

// ErrorFunc receives load or watch errors. The previous registry stays active.
type ErrorFunc func(error)

// Watcher reloads a models directory whenever a definition file changes.
type Watcher struct {
	dir      string
	fw       *fsnotify.Watcher
	debounce time.Duration
	onReload ReloadFunc
	onError  ErrorFunc

	closeOnce sync.Once
	done      chan struct{}
}

// Watch starts watching dir. Bursts of file events within debounce collapse
// into a single reload. The watcher stops when ctx is done or Close is called.
func Watch(ctx context.Context, dir string, debounce time.Duration, onReload ReloadFunc, onError ErrorFunc) (*Watcher, error) {
	abs, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if !fsutil.IsDir(abs) {
		return nil, fmt.Errorf("watch %s: not a directory", abs)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := fw.Add(abs); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if onError == nil {
		onError = func(error) {}
	}
	w := &Watcher{
		dir:      abs,
		fw:       fw,
		debounce: debounce,
		onReload: onReload,
		onError:  onError,
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fw.Close() })
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.closeOnce.Do(func() { _ = w.fw.Close() })
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !IsDefinitionFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		case <-timer.C:
			defs, err := LoadDir(w.dir)
			if err != nil {
				w.onError(err)
				continue
			}
			if w.onReload != nil {
				w.onReload(defs)
			}
		}
	}
}
