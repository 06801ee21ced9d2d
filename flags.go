package modregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FeatureFlagEvaluator is the boolean query interface the registry consumes
// for gating. Flag storage is owned elsewhere; the registry never mutates
// flags. Flags unknown to the evaluator must report false.
type FeatureFlagEvaluator interface {
	IsEnabled(flag string) bool
}

// StaticFlagEvaluator evaluates flags from a fixed in-memory map. Useful for
// tests and bootstrap wiring.
type StaticFlagEvaluator struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewStaticFlagEvaluator creates an evaluator over a copy of the given map.
// A nil map means every flag evaluates false.
func NewStaticFlagEvaluator(flags map[string]bool) *StaticFlagEvaluator {
	copied := make(map[string]bool, len(flags))
	for flag, value := range flags {
		copied[flag] = value
	}
	return &StaticFlagEvaluator{flags: copied}
}

// IsEnabled implements FeatureFlagEvaluator.
func (s *StaticFlagEvaluator) IsEnabled(flag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[flag]
}

// SetFlag sets a flag value, for tests that toggle flags mid-scenario.
func (s *StaticFlagEvaluator) SetFlag(flag string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flag] = value
}

// FileFlagEvaluator evaluates flags from a YAML or TOML file mapping flag
// names to booleans. Format is dispatched on the file extension. Watch starts
// hot-reloading the file so flag flips take effect without a restart.
type FileFlagEvaluator struct {
	path   string
	logger Logger

	mu    sync.RWMutex
	flags map[string]bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileFlagEvaluator loads the flag file at path. A nil logger is replaced
// with a no-op logger.
func NewFileFlagEvaluator(path string, logger Logger) (*FileFlagEvaluator, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	f := &FileFlagEvaluator{path: path, logger: logger}
	if err := f.reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// IsEnabled implements FeatureFlagEvaluator.
func (f *FileFlagEvaluator) IsEnabled(flag string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[flag]
}

func (f *FileFlagEvaluator) reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read flag file: %w", err)
	}

	flags := make(map[string]bool)
	switch filepath.Ext(f.path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &flags); err != nil {
			return fmt.Errorf("failed to parse flag file %s: %w", f.path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &flags); err != nil {
			return fmt.Errorf("failed to parse flag file %s: %w", f.path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFlagFormat, filepath.Ext(f.path))
	}

	f.mu.Lock()
	f.flags = flags
	f.mu.Unlock()
	f.logger.Debug("Feature flags loaded", "path", f.path, "count", len(flags))
	return nil
}

// Watch begins watching the flag file and reloads it on writes. Editors that
// replace the file (rename plus create) are handled by watching the parent
// directory. Call Close to stop watching.
func (f *FileFlagEvaluator) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create flag file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch flag file directory: %w", err)
	}

	f.watcher = watcher
	f.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(f.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := f.reload(); err != nil {
					f.logger.Error("Feature flag reload failed", "path", f.path, "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Error("Feature flag watcher error", "path", f.path, "error", err)
			case <-f.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the file watcher if one is running.
func (f *FileFlagEvaluator) Close() error {
	if f.watcher == nil {
		return nil
	}
	close(f.done)
	err := f.watcher.Close()
	f.watcher = nil
	return err
}
