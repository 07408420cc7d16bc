package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/folio/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// Configer loads and persists the config.toml in a resolved .folio/ directory.
type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// GetTarget returns the resolved config.toml path.
func (c *Configer) GetTarget() string {
	return c.targetPath
}

// IsValidConfigKey reports whether key names a supported configuration value.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseConfigTOML decodes a config.toml payload into a Config.
func ParseConfigTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version > CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (current is %d)", cfg.Version, CurrentV)
	}

	return &cfg, nil
}

// LoadConfig reads config.toml from the resolved directory, falling back to
// defaults when no file exists yet.
func (c *Configer) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	// Merge in defaults: fill in any zero-value fields from the loaded config
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = defaults.Storage.Provider
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = defaults.Embedding.Provider
	}
	if cfg.Embedding.Target == "" {
		cfg.Embedding.Target = defaults.Embedding.Target
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = defaults.Embedding.Dimensions
	}

	if cfg.Moderation.Target == "" {
		cfg.Moderation.Target = defaults.Moderation.Target
	}

	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = defaults.Chat.Provider
	}
	if cfg.Chat.Target == "" {
		cfg.Chat.Target = defaults.Chat.Target
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = defaults.Chat.Model
	}
	if cfg.Chat.Preamble == "" {
		cfg.Chat.Preamble = defaults.Chat.Preamble
	}

	if cfg.Retrieval.MatchThreshold == 0 {
		cfg.Retrieval.MatchThreshold = defaults.Retrieval.MatchThreshold
	}
	if cfg.Retrieval.MatchCount == 0 {
		cfg.Retrieval.MatchCount = defaults.Retrieval.MatchCount
	}
	if cfg.Retrieval.MinContentLength == 0 {
		cfg.Retrieval.MinContentLength = defaults.Retrieval.MinContentLength
	}

	if cfg.Answer.TokenBudget == 0 {
		cfg.Answer.TokenBudget = defaults.Answer.TokenBudget
	}

	if cfg.Events.Provider == "" {
		cfg.Events.Provider = defaults.Events.Provider
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = defaults.Events.Topic
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}
}

// SaveConfig persists the configuration to config.toml in the target .folio/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// Validate checks the credential preconditions a sync or query pass relies
// on: wherever a provider names an API key environment variable, that
// variable must be set. It is called once before any work begins.
func (cfg *Config) Validate() error {
	if cfg.Embedding.APIKeyEnv != "" && os.Getenv(cfg.Embedding.APIKeyEnv) == "" {
		return fmt.Errorf("embedding provider credentials missing: env %s is empty", cfg.Embedding.APIKeyEnv)
	}
	if cfg.Moderation.Enabled && cfg.Moderation.APIKeyEnv != "" && os.Getenv(cfg.Moderation.APIKeyEnv) == "" {
		return fmt.Errorf("moderation provider credentials missing: env %s is empty", cfg.Moderation.APIKeyEnv)
	}
	if cfg.Chat.APIKeyEnv != "" && os.Getenv(cfg.Chat.APIKeyEnv) == "" {
		return fmt.Errorf("chat provider credentials missing: env %s is empty", cfg.Chat.APIKeyEnv)
	}
	return nil
}
