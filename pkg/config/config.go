package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// Config holds all engine configuration
type Config struct {
	// Versioning behavior
	Versioning VersioningConfig

	// Git integration
	Git GitConfig

	// Storage configuration
	Storage StorageConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// VersioningConfig controls how bumps, migrations and the support window
// behave.
type VersioningConfig struct {
	// DefaultBumpType is applied when analysis detects no semantic impact.
	DefaultBumpType semver.BumpType

	// PrereleaseTags are the identifiers recognized as prerelease channels.
	PrereleaseTags []string

	// MigrationTimeout bounds a single migration execution.
	MigrationTimeout time.Duration

	// MaxSupportedVersions caps how many versions stay inside the support
	// window; zero means unlimited.
	MaxSupportedVersions int

	// AutoMigration executes generated migration paths immediately after an
	// accepted breaking bump.
	AutoMigration bool

	// StrictCompatibility rejects bumps that do not match detected impact.
	StrictCompatibility bool

	// AllowDowngrade gates rollback to an earlier version.
	AllowDowngrade bool
}

// GitConfig holds version-control tagging configuration
type GitConfig struct {
	Enabled    bool
	TagPrefix  string
	CreateTags bool
	PushTags   bool
}

// StorageConfig holds file-backed store configuration
type StorageConfig struct {
	// ContractRoot is the directory holding per-version contract files.
	ContractRoot string

	// SnapshotPath is where Export() snapshots are persisted.
	SnapshotPath string

	// Watch enables fsnotify-based cache invalidation on the contract root.
	Watch bool
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	versioning, err := loadVersioningConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Versioning:    versioning,
		Git:           loadGitConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() *Config {
	return &Config{
		Versioning: VersioningConfig{
			DefaultBumpType:      semver.BumpPatch,
			PrereleaseTags:       []string{"alpha", "beta", "rc"},
			MigrationTimeout:     30 * time.Minute,
			MaxSupportedVersions: 0,
			StrictCompatibility:  true,
		},
		Git: GitConfig{
			TagPrefix:  "v",
			CreateTags: true,
		},
		Storage: StorageConfig{
			ContractRoot: "./contracts",
			SnapshotPath: "./contractver-snapshot.json",
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.InfoLevel,
			MetricsEnabled: true,
		},
	}
}

// loadVersioningConfig loads versioning behavior from environment
func loadVersioningConfig() (VersioningConfig, error) {
	defaults := DefaultConfig().Versioning

	bumpText := getEnv("CONTRACTVER_DEFAULT_BUMP_TYPE", defaults.DefaultBumpType.String())
	bump, err := semver.ParseBumpType(bumpText)
	if err != nil {
		return VersioningConfig{}, fmt.Errorf("CONTRACTVER_DEFAULT_BUMP_TYPE: %w", err)
	}

	tags := defaults.PrereleaseTags
	if raw := getEnv("CONTRACTVER_PRERELEASE_TAGS", ""); raw != "" {
		tags = nil
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	return VersioningConfig{
		DefaultBumpType:      bump,
		PrereleaseTags:       tags,
		MigrationTimeout:     getEnvDuration("CONTRACTVER_MIGRATION_TIMEOUT", defaults.MigrationTimeout),
		MaxSupportedVersions: getEnvInt("CONTRACTVER_MAX_SUPPORTED_VERSIONS", defaults.MaxSupportedVersions),
		AutoMigration:        getEnvBool("CONTRACTVER_AUTO_MIGRATION", defaults.AutoMigration),
		StrictCompatibility:  getEnvBool("CONTRACTVER_STRICT_COMPATIBILITY", defaults.StrictCompatibility),
		AllowDowngrade:       getEnvBool("CONTRACTVER_ALLOW_DOWNGRADE", defaults.AllowDowngrade),
	}, nil
}

// loadGitConfig loads git tagging configuration from environment
func loadGitConfig() GitConfig {
	defaults := DefaultConfig().Git
	return GitConfig{
		Enabled:    getEnvBool("CONTRACTVER_GIT_ENABLED", defaults.Enabled),
		TagPrefix:  getEnv("CONTRACTVER_GIT_TAG_PREFIX", defaults.TagPrefix),
		CreateTags: getEnvBool("CONTRACTVER_GIT_CREATE_TAGS", defaults.CreateTags),
		PushTags:   getEnvBool("CONTRACTVER_GIT_PUSH_TAGS", defaults.PushTags),
	}
}

// loadStorageConfig loads file store configuration from environment
func loadStorageConfig() StorageConfig {
	defaults := DefaultConfig().Storage
	return StorageConfig{
		ContractRoot: getEnv("CONTRACTVER_CONTRACT_ROOT", defaults.ContractRoot),
		SnapshotPath: getEnv("CONTRACTVER_SNAPSHOT_PATH", defaults.SnapshotPath),
		Watch:        getEnvBool("CONTRACTVER_CONTRACT_WATCH", false),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("CONTRACTVER_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("CONTRACTVER_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Versioning.MigrationTimeout <= 0 {
		return fmt.Errorf("migration timeout must be positive")
	}
	if c.Versioning.MaxSupportedVersions < 0 {
		return fmt.Errorf("max supported versions must not be negative")
	}
	for _, tag := range c.Versioning.PrereleaseTags {
		if tag == "" {
			return fmt.Errorf("prerelease tags must not be empty")
		}
	}

	if c.Git.Enabled && !c.Git.CreateTags && c.Git.PushTags {
		return fmt.Errorf("git push requires tag creation to be enabled")
	}

	if c.Storage.ContractRoot == "" {
		return fmt.Errorf("contract root is required")
	}
	if c.Storage.SnapshotPath == "" {
		return fmt.Errorf("snapshot path is required")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
