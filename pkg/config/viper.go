package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/folio/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the FOLIO_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (FOLIO_CORPUS_ROOT, FOLIO_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: FOLIO_CORPUS_ROOT, FOLIO_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Corpus
	v.SetDefault("corpus.root", d.Corpus.Root)
	v.SetDefault("corpus.excluded_dirs", d.Corpus.ExcludedDirs)
	v.SetDefault("corpus.public_dirs", d.Corpus.PublicDirs)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.target", d.Storage.Target)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.api_key_env", d.Embedding.APIKeyEnv)

	// Moderation
	v.SetDefault("moderation.enabled", d.Moderation.Enabled)
	v.SetDefault("moderation.on_index", d.Moderation.OnIndex)
	v.SetDefault("moderation.target", d.Moderation.Target)
	v.SetDefault("moderation.api_key_env", d.Moderation.APIKeyEnv)

	// Chat
	v.SetDefault("chat.provider", d.Chat.Provider)
	v.SetDefault("chat.target", d.Chat.Target)
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.preamble", d.Chat.Preamble)
	v.SetDefault("chat.api_key_env", d.Chat.APIKeyEnv)

	// Retrieval
	v.SetDefault("retrieval.match_threshold", d.Retrieval.MatchThreshold)
	v.SetDefault("retrieval.match_count", d.Retrieval.MatchCount)
	v.SetDefault("retrieval.min_content_length", d.Retrieval.MinContentLength)

	// Answer
	v.SetDefault("answer.token_budget", d.Answer.TokenBudget)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}

// FromViper materializes an immutable Config snapshot from the viper instance.
// Commands call this once per invocation; a running pass never observes
// later changes to the underlying file or environment.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Corpus: CorpusConfig{
			Root:         v.GetString("corpus.root"),
			ExcludedDirs: v.GetStringSlice("corpus.excluded_dirs"),
			PublicDirs:   v.GetStringSlice("corpus.public_dirs"),
		},
		Storage: StorageConfig{
			Provider:   v.GetString("storage.provider"),
			Target:     v.GetString("storage.target"),
			SQLitePath: v.GetString("storage.sqlite_path"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
			APIKeyEnv:  v.GetString("embedding.api_key_env"),
		},
		Moderation: ModerationConfig{
			Enabled:   v.GetBool("moderation.enabled"),
			OnIndex:   v.GetBool("moderation.on_index"),
			Target:    v.GetString("moderation.target"),
			APIKeyEnv: v.GetString("moderation.api_key_env"),
		},
		Chat: ChatConfig{
			Provider:  v.GetString("chat.provider"),
			Target:    v.GetString("chat.target"),
			Model:     v.GetString("chat.model"),
			Preamble:  v.GetString("chat.preamble"),
			APIKeyEnv: v.GetString("chat.api_key_env"),
		},
		Retrieval: RetrievalConfig{
			MatchThreshold:   v.GetFloat64("retrieval.match_threshold"),
			MatchCount:       v.GetInt("retrieval.match_count"),
			MinContentLength: v.GetInt("retrieval.min_content_length"),
		},
		Answer: AnswerConfig{
			TokenBudget: v.GetInt("answer.token_budget"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetStringSlice("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
	}

	applyDefaults(cfg)
	return cfg
}
