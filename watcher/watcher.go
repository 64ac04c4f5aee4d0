// Package watcher reruns codegen when the rustdoc JSON it reads changes.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle.
const DefaultDebounce = 300 * time.Millisecond

// RegenerateFunc is called after the watched file settles.
type RegenerateFunc func(ctx context.Context) error

// Watcher watches one file. The file's directory is watched rather than the
// file itself because cargo replaces the JSON instead of writing in place.
type Watcher struct {
	path       string
	watcher    *fsnotify.Watcher
	regenerate RegenerateFunc
	debounce   time.Duration
	log        *zap.SugaredLogger

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
	running bool
	pending bool
	runs    sync.WaitGroup
	done    chan struct{}
}

// Options configures a Watcher.
type Options struct {
	// Debounce <= 0 means DefaultDebounce
	Debounce time.Duration
	Logger   *zap.SugaredLogger
}

// New creates a watcher for path.
func New(path string, regenerate RegenerateFunc, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Watcher{
		path:       abs,
		watcher:    fw,
		regenerate: regenerate,
		debounce:   opts.Debounce,
		log:        log,
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the event loop is running; the loop
// stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.watchLoop(ctx)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Watched file changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String(),
			)
			w.schedule(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// schedule debounces rapid changes into one regeneration
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx) })
}

// fire runs regenerations one at a time. A change that settles while a run is
// in flight is folded into a single follow-up run.
func (w *Watcher) fire(ctx context.Context) {
	w.mu.Lock()
	if w.stopped || ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	if w.running {
		w.pending = true
		w.mu.Unlock()
		return
	}
	w.running = true
	w.runs.Add(1)
	w.mu.Unlock()
	defer w.runs.Done()

	for {
		w.runOnce(ctx)

		w.mu.Lock()
		if !w.pending || w.stopped || ctx.Err() != nil {
			w.running = false
			w.pending = false
			w.mu.Unlock()
			return
		}
		w.pending = false
		w.mu.Unlock()
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	start := time.Now()
	if err := w.regenerate(ctx); err != nil {
		w.log.Errorw("Regeneration failed",
			logger.FieldFile, w.path,
			logger.FieldError, err,
		)
		return
	}
	w.log.Infow("Regenerated",
		logger.FieldFile, w.path,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Stop stops watching and waits for a running regeneration to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.runs.Wait()
	return err
}
