package config

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for correctness.
//
// Per-field constraints are expressed as struct tags and checked with
// go-playground/validator. Rules spanning several fields (exactly one
// default file, no duplicate paths) are checked explicitly afterwards.
//
// Validate never modifies the configuration: normalization such as
// uppercasing the log level happens in ApplyDefaults.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return validateStore(&cfg.Store)
}

// validateStore checks the credential file list for rules struct tags
// cannot express.
func validateStore(cfg *StoreConfig) error {
	if len(cfg.Files) == 0 {
		return fmt.Errorf("store: at least one credential file must be configured")
	}

	if cfg.LockTimeout < 0 {
		return fmt.Errorf("store: lock_timeout must not be negative, got %s", cfg.LockTimeout)
	}

	// Paths are compared after cleaning so "/etc/htstore/./users" and
	// "/etc/htstore/users" count as the same file.
	seen := make(map[string]int, len(cfg.Files))
	defaults := 0

	for i, f := range cfg.Files {
		clean := filepath.Clean(f.Path)
		if prev, ok := seen[clean]; ok {
			return fmt.Errorf("store: credential files %d and %d use the same path %q", prev, i, clean)
		}
		seen[clean] = i

		if f.Default {
			defaults++
		}
	}

	if defaults != 1 {
		return fmt.Errorf("store: exactly one credential file must be marked default, found %d", defaults)
	}

	return nil
}
