package modregistry

import (
	"fmt"
	"reflect"

	"github.com/golobby/cast"
)

// ModuleConfig describes a module as supplied by the caller at registration.
// It is immutable once registered except for Enabled, which the registry
// recomputes when feature-flag gating or Enable/Disable apply.
type ModuleConfig struct {
	// Name is the unique identifier for the module within a registry instance.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Version is the module version string. Informational, but required.
	Version string `json:"version" yaml:"version" toml:"version"`

	// Description is a human-readable summary of the module.
	Description string `json:"description,omitempty" yaml:"description" toml:"description"`

	// Dependencies lists names of modules this module requires. Each must
	// already be registered when this module registers.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies" toml:"dependencies"`

	// Routes, Components and Services are opaque inventories carried for
	// observability and the memory estimate. The registry does not interpret them.
	Routes     []string `json:"routes,omitempty" yaml:"routes" toml:"routes"`
	Components []string `json:"components,omitempty" yaml:"components" toml:"components"`
	Services   []string `json:"services,omitempty" yaml:"services" toml:"services"`

	// Enabled is the caller's requested initial state. Feature-flag gating
	// may override it at registration time.
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Category is a free-form grouping tag, e.g. "core" or "feature".
	Category string `json:"category,omitempty" yaml:"category" toml:"category"`

	// Priority is an ordering hint for callers. The registry does not enforce it.
	Priority int `json:"priority,omitempty" yaml:"priority" toml:"priority"`

	// RequiredFeatures must all evaluate true for the module to be enabled.
	RequiredFeatures []string `json:"requiredFeatures,omitempty" yaml:"requiredFeatures" toml:"requiredFeatures"`

	// OptionalFeatures are tracked for health reporting only; they never
	// block enabling.
	OptionalFeatures []string `json:"optionalFeatures,omitempty" yaml:"optionalFeatures" toml:"optionalFeatures"`
}

// Validate checks the structural requirements on a module config.
// It returns a sentinel-wrapped error naming the offending field.
func (c *ModuleConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name", ErrModuleNameRequired)
	}
	if c.Version == "" {
		return fmt.Errorf("%w: version (module %s)", ErrModuleVersionRequired, c.Name)
	}
	return nil
}

// ConfigFromMap builds a typed ModuleConfig from loosely-typed input, such as
// a decoded JSON document or a script-language export. Field presence and
// type checks mirror Validate: name must be a non-empty string, enabled must
// be a boolean if present, and the list-valued fields must be lists if
// present. Scalar fields tolerate representable values (a numeric version or
// a string priority) and are coerced.
func ConfigFromMap(raw map[string]any) (ModuleConfig, error) {
	var cfg ModuleConfig

	name, err := stringField(raw, "name")
	if err != nil {
		return cfg, err
	}
	cfg.Name = name

	if v, ok := raw["version"]; ok {
		cfg.Version = fmt.Sprint(v)
	}
	if v, ok := raw["description"]; ok {
		cfg.Description = fmt.Sprint(v)
	}
	if v, ok := raw["category"]; ok {
		cfg.Category = fmt.Sprint(v)
	}

	if v, ok := raw["enabled"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return cfg, fmt.Errorf("%w: enabled", ErrFieldNotBool)
		}
		cfg.Enabled = b
	}

	if v, ok := raw["priority"]; ok {
		p, castErr := cast.FromType(fmt.Sprint(v), reflect.TypeOf(0))
		if castErr != nil {
			return cfg, fmt.Errorf("%w: priority: %w", ErrFieldNotCastable, castErr)
		}
		cfg.Priority = p.(int)
	}

	for field, target := range map[string]*[]string{
		"dependencies":     &cfg.Dependencies,
		"routes":           &cfg.Routes,
		"components":       &cfg.Components,
		"services":         &cfg.Services,
		"requiredFeatures": &cfg.RequiredFeatures,
		"optionalFeatures": &cfg.OptionalFeatures,
	} {
		list, listErr := stringListField(raw, field)
		if listErr != nil {
			return cfg, listErr
		}
		*target = list
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func stringField(raw map[string]any, field string) (string, error) {
	v, ok := raw[field]
	if !ok {
		return "", nil
	}
	s, isString := v.(string)
	if !isString {
		return "", fmt.Errorf("%w: %s", ErrFieldNotString, field)
	}
	return s, nil
}

func stringListField(raw map[string]any, field string) ([]string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrFieldNotList, field)
	}
}
