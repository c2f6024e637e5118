package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// ErrNoFile is returned by Add for instances without a backing file.
var ErrNoFile = errors.New("config has no backing file")

// ErrStopped is returned when starting a watcher that was stopped.
var ErrStopped = errors.New("watcher stopped")

// Target is a configuration that can be reloaded from its backing file.
// *config.Instance implements it.
type Target interface {
	Name() string
	SavePath() string
	Reload() error
	ResetIfMissing() bool
}

// Options control polling and reload retries.
type Options struct {
	PollInterval time.Duration
	// Attempts is the number of reload tries per change.
	Attempts int
	// Backoff is the wait after the first failed try; it doubles each time.
	Backoff time.Duration
	Logger  *slog.Logger
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		PollInterval: 250 * time.Millisecond,
		Attempts:     5,
		Backoff:      10 * time.Millisecond,
		Logger:       slog.Default(),
	}
}

// Watcher reloads targets when their files change.
type Watcher struct {
	opts    Options
	logger  *slog.Logger
	watcher *argus.Watcher

	mu      sync.Mutex
	targets map[string]Target

	ctx      atomic.Pointer[context.Context]
	running  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a watcher. Zero option fields take their defaults.
func New(opts Options) *Watcher {
	def := DefaultOptions()

	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}

	if opts.Attempts <= 0 {
		opts.Attempts = def.Attempts
	}

	if opts.Backoff <= 0 {
		opts.Backoff = def.Backoff
	}

	if opts.Logger == nil {
		opts.Logger = def.Logger
	}

	logger := opts.Logger.With("component", "watch")

	w := &Watcher{
		opts:    opts,
		logger:  logger,
		targets: make(map[string]Target),
		done:    make(chan struct{}),
	}

	w.watcher = argus.New(argus.Config{
		PollInterval:         opts.PollInterval,
		CacheTTL:             opts.PollInterval / 2,
		OptimizationStrategy: argus.OptimizationAuto,
		Audit:                argus.AuditConfig{Enabled: false},
		ErrorHandler: func(err error, path string) {
			logger.Warn("file watch error", "path", path, "error", err)
		},
	})

	ctx := context.Background()
	w.ctx.Store(&ctx)

	return w
}

// Add starts watching the backing file of t.
func (w *Watcher) Add(t Target) error {
	path := t.SavePath()
	if path == "" {
		return fmt.Errorf("%w: %q", ErrNoFile, t.Name())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.targets[path]; ok {
		return fmt.Errorf("file %s is already watched", path)
	}

	if err := w.watcher.Watch(path, func(ev argus.ChangeEvent) { w.handle(t, ev) }); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w.targets[path] = t
	w.logger.Debug("watching config file", "config", t.Name(), "path", path)

	return nil
}

// Start begins polling. The watcher stops when ctx is done or Stop is called;
// it cannot be restarted.
func (w *Watcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return ErrStopped
	}

	if !w.running.CompareAndSwap(false, true) {
		return errors.New("watcher already running")
	}

	w.ctx.Store(&ctx)

	if err := w.watcher.Start(); err != nil {
		w.running.Store(false)
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		select {
		case <-ctx.Done():
			if err := w.Stop(); err != nil {
				w.logger.Warn("failed to stop file watcher", "error", err)
			}
		case <-w.done:
		}
	}()

	w.logger.Info("config watcher started", "poll_interval", w.opts.PollInterval)

	return nil
}

// Stop ends polling. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error

	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		close(w.done)

		if !w.running.Swap(false) {
			return
		}

		err = w.watcher.Stop()
		w.logger.Info("config watcher stopped")
	})

	return err
}

func (w *Watcher) handle(t Target, ev argus.ChangeEvent) {
	log := w.logger.With("config", t.Name(), "path", ev.Path)

	if ev.IsDelete {
		if t.ResetIfMissing() {
			log.Info("config file deleted, defaults restored")
		}

		return
	}

	ctx := *w.ctx.Load()

	err := retry(ctx, w.opts.Attempts, w.opts.Backoff, t.Reload)
	if err != nil {
		log.Error("config reload failed", "attempts", w.opts.Attempts, "error", err)
		return
	}

	log.Info("config reloaded")
}
