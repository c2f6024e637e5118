package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"dynconf/internal/schema"
)

// Options configure a Registry.
type Options struct {
	// DefaultDir holds the files of instances registered without an absolute save path.
	DefaultDir string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the registry options used when none are given.
func DefaultOptions() Options {
	return Options{
		DefaultDir: filepath.Join(os.TempDir(), "dynconf"),
	}
}

// Registry owns named configuration instances.
type Registry struct {
	mu         sync.RWMutex
	instances  map[string]*Instance
	order      []string
	defaultDir string
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir := opts.DefaultDir
	if dir == "" {
		dir = DefaultOptions().DefaultDir
	}

	return &Registry{
		instances:  make(map[string]*Instance),
		defaultDir: dir,
		logger:     logger,
	}
}

// DefaultDir returns the directory for relative save paths.
func (r *Registry) DefaultDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultDir
}

// SetDefaultDir changes the directory used by later registrations and creates it.
func (r *Registry) SetDefaultDir(dir string) error {
	abs, err := filepath.Abs(expandUser(dir))
	if err != nil {
		return fmt.Errorf("invalid default dir %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("failed to create default dir %s: %w", abs, err)
	}

	r.mu.Lock()
	r.defaultDir = abs
	r.mu.Unlock()

	return nil
}

// Register creates the instance called name for s. A persisted file that
// exists is loaded through the fix and validation pipeline; if it is
// unusable the instance starts from the schema defaults.
func (r *Registry) Register(name string, s *schema.Schema, opts InstanceOptions) (*Instance, error) {
	if name == "" {
		return nil, errors.New("config name required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}

	savePath := ""
	if !opts.InMemory {
		savePath = r.resolveSavePath(name, opts.SavePath)
	}

	inst, err := newInstance(name, s, savePath, opts.AutoSave && !opts.InMemory, r.logger)
	if err != nil {
		return nil, err
	}

	r.instances[name] = inst
	r.order = append(r.order, name)

	r.logger.Debug("config registered", "config", name, "path", savePath)

	return inst, nil
}

func (r *Registry) resolveSavePath(name, savePath string) string {
	if savePath == "" {
		return filepath.Join(r.defaultDir, name+".json")
	}

	p := expandUser(savePath)
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(r.defaultDir, p)
}

// Get returns the instance called name.
func (r *Registry) Get(name string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}

	return inst, nil
}

// Instances returns every instance in registration order.
func (r *Registry) Instances() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Instance, len(r.order))
	for i, name := range r.order {
		out[i] = r.instances[name]
	}

	return out
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// SaveAll persists every persistent instance concurrently and returns the
// first failure.
func (r *Registry) SaveAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, inst := range r.Instances() {
		if !inst.Persistent() {
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return inst.Persist()
		})
	}

	return g.Wait()
}

// RestoreAllDefaults resets every instance to its defaults.
func (r *Registry) RestoreAllDefaults() error {
	var errs []error

	for _, inst := range r.Instances() {
		if err := inst.RestoreDefaults(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func expandUser(p string) string {
	if p != "~" && !hasHomePrefix(p) {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}

	return filepath.Join(home, p[1:])
}

func hasHomePrefix(p string) bool {
	return len(p) >= 2 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator)
}
