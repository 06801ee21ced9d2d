package modregistry

import (
	"errors"
)

// Registry errors
var (
	// Config validation errors
	ErrModuleNameRequired    = errors.New("module name is required")
	ErrModuleVersionRequired = errors.New("module version is required")
	ErrFieldNotString        = errors.New("field must be a string")
	ErrFieldNotBool          = errors.New("field must be a boolean")
	ErrFieldNotList          = errors.New("field must be a list")
	ErrFieldNotCastable      = errors.New("field value cannot be converted")

	// Registration errors
	ErrDuplicateModule    = errors.New("module already registered")
	ErrDependencyNotFound = errors.New("module depends on non-existent module")
	ErrCircularDependency = errors.New("circular dependency detected")

	// Observer errors
	ErrObserverNil = errors.New("observer cannot be nil")

	// Flag evaluator errors
	ErrUnsupportedFlagFormat = errors.New("unsupported feature flag file format")

	// Manifest errors
	ErrUnsupportedManifestFormat = errors.New("unsupported manifest file format")

	// Health schedule errors
	ErrHealthScheduleRunning = errors.New("health check schedule already running")
)
