package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the annotated configuration written by `htstore config
// init`. Every option is listed; values match the built-in defaults so the
// file is valid as generated.
//
// lock_timeout stays commented out: plain YAML has no duration type, so the
// human-readable form ("10s") only works when read through Load.
const configTemplate = `# htstore Configuration File
#
# This file lists every available option. Values shown match the built-in
# defaults; edit what you need.
#
# Environment variables override this file, for example:
#   HTSTORE_LOGGING_LEVEL=DEBUG

logging:
  # Log level: DEBUG, INFO, WARN, ERROR
  level: INFO
  # Log format: text, json
  format: text
  # Log output: stdout, stderr, or a file path
  output: stderr

metrics:
  # Expose Prometheus metrics for authentication, mutation, and reload rates
  enabled: false

store:
  # Maximum number of users across all credential files.
  # 0 means unbounded; a negative value disables adding users entirely.
  max_users: 0

  # How long mutations wait for the advisory file lock before giving up.
  # Accepts human-readable durations: "10s", "1m".
  # lock_timeout: 10s

  # Ordered credential files. When a username appears in several files the
  # last file wins the password hash and group memberships accumulate.
  # Exactly one file must be marked default: it receives new users and
  # password changes.
  files:
    - path: /etc/htstore/users.htpasswd
      group: users
      default: true
    # - path: /etc/htstore/admins.htpasswd
    #   group: admins
`

// InitConfig creates a configuration file at the default location.
//
// Returns the path of the created file. When force is false and a file
// already exists, an error is returned and the existing file is untouched.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()

	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}

	return path, nil
}

// InitConfigToPath creates a configuration file at the given path.
//
// When force is false and a file already exists, an error is returned and
// the existing file is untouched.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Same restricted permissions as SaveConfig
	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
