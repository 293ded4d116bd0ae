package config

import "errors"

// Validation errors returned by [Config.validate] when required configuration
// groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates an unknown environment or role value.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidAPIConfigs indicates invalid API settings (for example,
	// missing base URL or zero request timeout).
	ErrInvalidAPIConfigs = errors.New("invalid api configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates an inconsistent polling policy (for
	// example, a ceiling below the floor or a growth factor below one).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
