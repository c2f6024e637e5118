package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"dynconf/internal/autofix"
	"dynconf/internal/schema"
	"dynconf/internal/store"
	"dynconf/internal/tree"
	"dynconf/internal/validate"
)

// InstanceOptions configure one registered instance.
type InstanceOptions struct {
	// SavePath is the backing file. Relative paths are under the registry's
	// default dir; empty means "<default dir>/<name>.json".
	SavePath string
	// AutoSave persists after every successful update.
	AutoSave bool
	// InMemory instances never touch the disk.
	InMemory bool
}

// Source selects where Restore takes a value from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
)

// IsValid returns true if the source is recognized.
func (s Source) IsValid() bool {
	return s == SourceDefault || s == SourceFile
}

// snapshot is never modified after it is published.
type snapshot struct {
	schema    *schema.Schema
	validator *validate.Validator
	defaults  map[string]any
	active    map[string]any
}

// Instance is one typed configuration.
type Instance struct {
	name     string
	savePath string
	autoSave bool
	logger   *slog.Logger

	// mu serializes writers; readers load state without locking.
	mu    sync.Mutex
	state atomic.Pointer[snapshot]
}

func newInstance(name string, s *schema.Schema, savePath string, autoSave bool, logger *slog.Logger) (*Instance, error) {
	inst := &Instance{
		name:     name,
		savePath: savePath,
		autoSave: autoSave,
		logger:   logger.With("config", name),
	}

	snap, err := newSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", name, err)
	}

	inst.state.Store(snap)

	if savePath == "" {
		return inst, nil
	}

	saved, err := inst.loadFile(snap)

	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		inst.logger.Warn("bad data in config file, using defaults", "path", savePath, "error", err)
	default:
		inst.state.Store(snap.with(saved))
	}

	return inst, nil
}

func newSnapshot(s *schema.Schema) (*snapshot, error) {
	v, err := validate.New(s)
	if err != nil {
		return nil, err
	}

	defaults, err := v.Validate(s.Defaults())
	if err != nil {
		return nil, fmt.Errorf("invalid defaults: %w", err)
	}

	return &snapshot{schema: s, validator: v, defaults: defaults, active: defaults}, nil
}

func (s *snapshot) with(active map[string]any) *snapshot {
	c := *s
	c.active = active

	return &c
}

// Name returns the registered name.
func (i *Instance) Name() string { return i.name }

// SavePath returns the backing file, or "" for in-memory instances.
func (i *Instance) SavePath() string { return i.savePath }

// Persistent reports whether the instance has a backing file.
func (i *Instance) Persistent() bool { return i.savePath != "" }

// Schema returns the current schema snapshot.
func (i *Instance) Schema() *schema.Schema {
	return i.state.Load().schema
}

// Active returns a copy of the active tree.
func (i *Instance) Active() map[string]any {
	return tree.Normalize(i.state.Load().active).(map[string]any)
}

// Defaults returns a copy of the validated default tree.
func (i *Instance) Defaults() map[string]any {
	return tree.Normalize(i.state.Load().defaults).(map[string]any)
}

// Get returns the active value at a dotted path.
func (i *Instance) Get(path string) (any, error) {
	v, err := tree.Get(i.state.Load().active, path)
	if err != nil {
		return nil, err
	}

	return tree.Normalize(v), nil
}

// FieldNames lists the leaf fields under scope.
func (i *Instance) FieldNames(scope string) ([]string, error) {
	return i.Schema().FieldNames(scope)
}

// Set updates the value at path. The raw value goes through the auto-fix
// pass with the current tree bound for expressions, then the validator.
// The report of the pass is returned even when validation fails.
func (i *Instance) Set(path string, value any) (*autofix.Result, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap := i.state.Load()

	if err := checkEditable(snap.schema, path); err != nil {
		return nil, err
	}

	candidate, err := tree.Set(snap.active, path, value)
	if err != nil {
		return nil, fmt.Errorf("failed to set %q: %w", path, err)
	}

	res, active, err := i.process(snap, candidate.(map[string]any))
	if err != nil {
		return res, fmt.Errorf("failed to set %q: %w", path, err)
	}

	i.publish(snap.with(active))

	return res, nil
}

// Update replaces the whole active tree with input after fixing and
// validating it.
func (i *Instance) Update(input map[string]any) (*autofix.Result, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap := i.state.Load()

	res, active, err := i.process(snap, input)
	if err != nil {
		return res, err
	}

	i.publish(snap.with(active))

	return res, nil
}

// Restore sets path back to its default or to the value in the backing file.
// A missing or unusable file restores from the defaults.
func (i *Instance) Restore(path string, source Source) error {
	var (
		from map[string]any
		snap = i.state.Load()
	)

	switch source {
	case SourceDefault:
		from = snap.defaults
	case SourceFile:
		from = snap.defaults

		if i.Persistent() {
			if saved, err := i.loadFile(snap); err == nil {
				from = saved
			}
		}
	default:
		return fmt.Errorf("unknown restore source %q", source)
	}

	v, err := tree.Get(from, path)
	if err != nil {
		return err
	}

	_, err = i.Set(path, v)

	return err
}

// RestoreDefaults resets the whole tree to the defaults.
func (i *Instance) RestoreDefaults() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap := i.state.Load()
	i.publish(snap.with(snap.defaults))

	return nil
}

// Persist writes the active tree to the backing file.
func (i *Instance) Persist() error {
	if !i.Persistent() {
		i.logger.Debug("config is memory-only, nothing persisted")
		return ErrNotPersistent
	}

	if err := store.Save(i.savePath, i.state.Load().active); err != nil {
		i.logger.Warn("could not save config", "path", i.savePath, "error", err)
		return err
	}

	i.logger.Info("config saved", "path", i.savePath)

	return nil
}

// SaveAs exports the active tree to path in the format its extension names.
func (i *Instance) SaveAs(path string) error {
	abs, err := filepath.Abs(expandUser(path))
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", path, err)
	}

	if err := store.Save(abs, i.state.Load().active); err != nil {
		i.logger.Warn("export failed", "path", abs, "error", err)
		return err
	}

	i.logger.Info("config exported", "path", abs)

	return nil
}

// Reload replaces the active tree with the backing file. The current tree
// is kept when the file is missing or does not validate.
func (i *Instance) Reload() error {
	if !i.Persistent() {
		return ErrNotPersistent
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	snap := i.state.Load()

	saved, err := i.loadFile(snap)
	if err != nil {
		return err
	}

	i.state.Store(snap.with(saved))
	i.logger.Debug("config reloaded", "path", i.savePath)

	return nil
}

// ResetIfMissing restores the defaults when the backing file no longer exists
// and reports whether it did.
func (i *Instance) ResetIfMissing() bool {
	if !i.Persistent() {
		return false
	}

	if _, err := os.Stat(i.savePath); !errors.Is(err, os.ErrNotExist) {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	snap := i.state.Load()
	i.state.Store(snap.with(snap.defaults))
	i.logger.Info("config file no longer exists, reset to defaults", "path", i.savePath)

	return true
}

// ReplaceSchema swaps in s after checking that the active tree satisfies it.
// On failure the old schema and tree stay in place.
func (i *Instance) ReplaceSchema(s *schema.Schema) (*autofix.Result, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	old := i.state.Load()

	next, err := newSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", i.name, err)
	}

	res, active, err := i.process(next, old.active)
	if err != nil {
		return res, fmt.Errorf("active config does not fit schema %q: %w", s.Name(), err)
	}

	i.publish(next.with(active))
	i.logger.Info("schema replaced", "schema", s.Name())

	return res, nil
}

// process runs the auto-fix pass and the validator over input against snap.
func (i *Instance) process(snap *snapshot, input map[string]any) (*autofix.Result, map[string]any, error) {
	res := autofix.Run(snap.schema, input, autofix.Options{Current: snap.active, Logger: i.logger})

	active, err := snap.validator.Validate(res.Fixed)
	if err != nil {
		return res, nil, err
	}

	return res, active, nil
}

func (i *Instance) loadFile(snap *snapshot) (map[string]any, error) {
	raw, err := store.Load(i.savePath)
	if err != nil {
		return nil, err
	}

	_, active, err := i.process(snap, raw)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", i.savePath, err)
	}

	return active, nil
}

// publish stores snap and persists it when auto-save is on. i.mu must be held.
func (i *Instance) publish(snap *snapshot) {
	i.state.Store(snap)

	if !i.autoSave {
		return
	}

	if err := store.Save(i.savePath, snap.active); err != nil {
		i.logger.Warn("auto-save failed", "path", i.savePath, "error", err)
	}
}

func checkEditable(s *schema.Schema, path string) error {
	p, err := tree.ParsePath(path)
	if err != nil {
		return err
	}

	for n := 1; n <= len(p); n++ {
		prefix := p[:n].String()

		f, ok := s.Lookup(prefix)
		if !ok {
			if s.Extra() == schema.ExtraAllow {
				return nil
			}

			_, err := s.Field(prefix)

			return err
		}

		if !f.Editable() {
			return fmt.Errorf("%w: %q", ErrNotEditable, prefix)
		}
	}

	return nil
}
