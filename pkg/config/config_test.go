package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config with only the required sections
	configContent := `
logging:
  level: "INFO"

store:
  files:
    - path: "` + yamlSafePath(tmpDir) + `/users.htpasswd"
      group: users
      default: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default output 'stderr', got %q", cfg.Logging.Output)
	}
	if cfg.Store.LockTimeout != 10*time.Second {
		t.Errorf("Expected default lock_timeout 10s, got %v", cfg.Store.LockTimeout)
	}
	if cfg.Store.MaxUsers != 0 {
		t.Errorf("Expected default max_users 0, got %d", cfg.Store.MaxUsers)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows quick local testing without writing a config file first.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	// Verify default config is returned
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	// Verify the default credential file is present
	if len(cfg.Store.Files) != 1 {
		t.Fatalf("Expected one default credential file, got %d", len(cfg.Store.Files))
	}
	if !cfg.Store.Files[0].Default {
		t.Error("Expected the default credential file to be marked default")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[logging]
level = "WARN"
format = "json"

[store]
max_users = 50
lock_timeout = "30s"

[[store.files]]
path = "` + yamlSafePath(tmpDir) + `/users.htpasswd"
group = "users"
default = true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Store.MaxUsers != 50 {
		t.Errorf("Expected max_users 50, got %d", cfg.Store.MaxUsers)
	}
	if cfg.Store.LockTimeout != 30*time.Second {
		t.Errorf("Expected lock_timeout 30s, got %v", cfg.Store.LockTimeout)
	}
}

func TestLoad_LockTimeoutDuration(t *testing.T) {
	// Durations in config files use human-readable form and are decoded
	// through the duration hook.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  lock_timeout: 90s
  files:
    - path: "` + yamlSafePath(tmpDir) + `/users.htpasswd"
      group: users
      default: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Store.LockTimeout != 90*time.Second {
		t.Errorf("Expected lock_timeout 90s, got %v", cfg.Store.LockTimeout)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	// Verify all defaults are set
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default log output 'stderr', got %q", cfg.Logging.Output)
	}
	if cfg.Store.LockTimeout != 10*time.Second {
		t.Errorf("Expected default lock timeout 10s, got %v", cfg.Store.LockTimeout)
	}
	if len(cfg.Store.Files) != 1 {
		t.Fatalf("Expected one default credential file, got %d", len(cfg.Store.Files))
	}
	if cfg.Store.Files[0].Group != "users" {
		t.Errorf("Expected default group 'users', got %q", cfg.Store.Files[0].Group)
	}
}

func TestDefaultConfigExists(t *testing.T) {
	// Point the default location at a temp directory so the test never
	// depends on the developer's real config.
	tmpDir := t.TempDir()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	if DefaultConfigExists() {
		t.Error("Expected no config at fresh default location")
	}

	path := GetDefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("logging:\n  level: INFO\n"), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if !DefaultConfigExists() {
		t.Error("Expected config to be detected at default location")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	// Should contain htstore and config.yaml
	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	// Should contain htstore
	if filepath.Base(dir) != "htstore" {
		t.Errorf("Expected directory name 'htstore', got %q", filepath.Base(dir))
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "DEBUG"
	cfg.Store.MaxUsers = 7
	cfg.Store.Files = []FileConfig{
		{Path: filepath.Join(tmpDir, "users.htpasswd"), Group: "users", Default: true},
		{Path: filepath.Join(tmpDir, "admins.htpasswd"), Group: "admins"},
	}

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// The config names every credential file on the system, so it must not
	// be world-readable.
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat saved config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected permissions 0600, got %04o", perm)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Logging.Level != "DEBUG" {
		t.Errorf("Expected level 'DEBUG', got %q", loaded.Logging.Level)
	}
	if loaded.Store.MaxUsers != 7 {
		t.Errorf("Expected max_users 7, got %d", loaded.Store.MaxUsers)
	}
	if loaded.Store.LockTimeout != cfg.Store.LockTimeout {
		t.Errorf("Expected lock_timeout %v, got %v", cfg.Store.LockTimeout, loaded.Store.LockTimeout)
	}
	if len(loaded.Store.Files) != 2 {
		t.Fatalf("Expected 2 credential files, got %d", len(loaded.Store.Files))
	}
	if loaded.Store.Files[1].Group != "admins" {
		t.Errorf("Expected second group 'admins', got %q", loaded.Store.Files[1].Group)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("HTSTORE_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("HTSTORE_STORE_MAX_USERS", "25")
	defer func() {
		_ = os.Unsetenv("HTSTORE_LOGGING_LEVEL")
		_ = os.Unsetenv("HTSTORE_STORE_MAX_USERS")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

store:
  max_users: 5
  files:
    - path: "` + yamlSafePath(tmpDir) + `/users.htpasswd"
      group: users
      default: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Store.MaxUsers != 25 {
		t.Errorf("Expected max_users 25 from env var, got %d", cfg.Store.MaxUsers)
	}
}
