package modregistry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest describes a set of modules to register, listed in dependency
// order. YAML and TOML encodings are supported.
type Manifest struct {
	Modules []ModuleConfig `yaml:"modules" toml:"modules"`
}

// LoadManifest reads a module manifest file and registers each module in
// declared order. Registration stops at the first failure and the error is
// wrapped with the failing module's name; modules registered before the
// failure remain in the store.
func (r *Registry) LoadManifest(path string) error {
	manifest, err := ReadManifest(path)
	if err != nil {
		return err
	}

	for _, cfg := range manifest.Modules {
		if err := r.Register(cfg); err != nil {
			return fmt.Errorf("registering module %s from %s: %w", cfg.Name, path, err)
		}
	}
	r.logger.Info("Manifest loaded", "path", path, "modules", len(manifest.Modules))
	return nil
}

// ReadManifest decodes a manifest file without registering anything. Format
// is dispatched on the file extension.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedManifestFormat, filepath.Ext(path))
	}
	return &manifest, nil
}
