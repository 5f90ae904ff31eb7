package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/mem/config.yml.
// Zero values mean "use the built-in default".
type GlobalConfig struct {
	StorePath        string `yaml:"store_path,omitempty"`
	DefaultNamespace string `yaml:"default_namespace,omitempty"`
	QueryLimit       int    `yaml:"query_limit,omitempty"`
	CleanupDays      int    `yaml:"cleanup_days,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "mem"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Keys lists the settable configuration keys in display order.
var Keys = []string{"store-path", "default-namespace", "query-limit", "cleanup-days"}

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/mem/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("global config %s: %w", path, err)
	}

	if cfg.StorePath != "" {
		cfg.StorePath = ExpandPath(cfg.StorePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Validate checks numeric settings.
func (c *GlobalConfig) Validate() error {
	if err := ValidateNonNegative("query_limit", c.QueryLimit); err != nil {
		return err
	}
	return ValidateNonNegative("cleanup_days", c.CleanupDays)
}

// Save writes the config to GlobalConfigPath, creating its directory.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine global config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = c
	return nil
}

// Get returns the raw value of a key as it is stored (empty when unset).
func (c *GlobalConfig) Get(key string) (string, error) {
	switch NormalizeKey(key) {
	case "store-path":
		return c.StorePath, nil
	case "default-namespace":
		return c.DefaultNamespace, nil
	case "query-limit":
		return intString(c.QueryLimit), nil
	case "cleanup-days":
		return intString(c.CleanupDays), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set parses and validates value and assigns it to key.
func (c *GlobalConfig) Set(key, value string) error {
	switch NormalizeKey(key) {
	case "store-path":
		c.StorePath = ExpandPath(value)
	case "default-namespace":
		c.DefaultNamespace = value
	case "query-limit":
		n, err := parseNonNegative("query_limit", value)
		if err != nil {
			return err
		}
		c.QueryLimit = n
	case "cleanup-days":
		n, err := parseNonNegative("cleanup_days", value)
		if err != nil {
			return err
		}
		c.CleanupDays = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// NormalizeKey converts key formats (query-limit, query_limit, QUERY_LIMIT) to consistent format
func NormalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

// GetDefaultNamespace returns the configured default namespace or "default".
func GetDefaultNamespace() string {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg.DefaultNamespace == "" {
		return DefaultNamespace
	}
	return cfg.DefaultNamespace
}

// GetQueryLimit returns the configured display limit for query results.
func GetQueryLimit() int {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg.QueryLimit == 0 {
		return DefaultQueryLimit
	}
	return cfg.QueryLimit
}

// GetCleanupDays returns the configured cleanup age in days.
func GetCleanupDays() int {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg.CleanupDays == 0 {
		return DefaultCleanupDays
	}
	return cfg.CleanupDays
}

func parseNonNegative(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidValue, name, value)
	}
	if err := ValidateNonNegative(name, n); err != nil {
		return 0, err
	}
	return n, nil
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
