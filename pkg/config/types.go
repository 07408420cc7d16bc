package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent folio configuration stored as config.toml
// in the .folio/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Corpus     CorpusConfig     `toml:"corpus"`
	Storage    StorageConfig    `toml:"storage"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Moderation ModerationConfig `toml:"moderation"`
	Chat       ChatConfig       `toml:"chat"`
	Retrieval  RetrievalConfig  `toml:"retrieval"`
	Answer     AnswerConfig     `toml:"answer"`
	Events     EventsConfig     `toml:"events"`
	API        APIConfig        `toml:"api"`
}

// CorpusConfig locates the document corpus and its directory rules.
type CorpusConfig struct {
	// Root is the directory the filesystem provider scans.
	Root string `toml:"root,omitempty"`

	// ExcludedDirs are path prefixes (relative to Root) skipped during scans.
	ExcludedDirs []string `toml:"excluded_dirs,omitempty"`

	// PublicDirs are path prefixes whose documents are marked public.
	PublicDirs []string `toml:"public_dirs,omitempty"`
}

// StorageConfig selects and targets the document/section store.
type StorageConfig struct {
	// Provider is one of "postgres", "sqlite", "memory".
	Provider string `toml:"provider,omitempty"`

	// Target is the postgres connection string when Provider is "postgres".
	Target string `toml:"target,omitempty"`

	// SQLitePath is the database path when Provider is "sqlite".
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`

	// APIKeyEnv names the environment variable holding the provider API key.
	// Empty means the provider needs no key (e.g. local Ollama).
	APIKeyEnv string `toml:"api_key_env,omitempty"`
}

// ModerationConfig holds moderation gate settings.
type ModerationConfig struct {
	// Enabled gates queries through the moderation provider before retrieval.
	Enabled bool `toml:"enabled,omitempty"`

	// OnIndex additionally gates document content during sync passes.
	OnIndex bool `toml:"on_index,omitempty"`

	Target    string `toml:"target,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"`
}

// ChatConfig holds chat-completion provider settings for the ask path.
type ChatConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`

	// Preamble is the persona/instruction text prepended to assembled context.
	Preamble string `toml:"preamble,omitempty"`

	APIKeyEnv string `toml:"api_key_env,omitempty"`
}

// RetrievalConfig holds nearest-neighbor query parameters. Search and ask
// invocations may override these per call.
type RetrievalConfig struct {
	MatchThreshold   float64 `toml:"match_threshold,omitempty"`
	MatchCount       int     `toml:"match_count,omitempty"`
	MinContentLength int     `toml:"min_content_length,omitempty"`
}

// AnswerConfig holds context assembly settings.
type AnswerConfig struct {
	// TokenBudget caps the tokens admitted into a grounding context.
	TokenBudget int `toml:"token_budget,omitempty"`
}

// EventsConfig holds sync event stream settings.
type EventsConfig struct {
	// Provider is one of "nop", "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func listGet(l []string) string  { return strings.Join(l, ",") }
func listSet(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// List-valued keys round-trip through comma-separated strings.
var configKeys = map[string]configKeyInfo{
	"corpus.root": {
		get: func(c *Config) string { return c.Corpus.Root },
		set: func(c *Config, v string) error { c.Corpus.Root = v; return nil },
	},
	"corpus.excluded_dirs": {
		get: func(c *Config) string { return listGet(c.Corpus.ExcludedDirs) },
		set: func(c *Config, v string) error { c.Corpus.ExcludedDirs = listSet(v); return nil },
	},
	"corpus.public_dirs": {
		get: func(c *Config) string { return listGet(c.Corpus.PublicDirs) },
		set: func(c *Config, v string) error { c.Corpus.PublicDirs = listSet(v); return nil },
	},
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.target": {
		get: func(c *Config) string { return c.Storage.Target },
		set: func(c *Config, v string) error { c.Storage.Target = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"embedding.api_key_env": {
		get: func(c *Config) string { return c.Embedding.APIKeyEnv },
		set: func(c *Config, v string) error { c.Embedding.APIKeyEnv = v; return nil },
	},
	"moderation.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Moderation.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for moderation.enabled: %w", err)
			}
			c.Moderation.Enabled = b
			return nil
		},
	},
	"moderation.on_index": {
		get: func(c *Config) string { return strconv.FormatBool(c.Moderation.OnIndex) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for moderation.on_index: %w", err)
			}
			c.Moderation.OnIndex = b
			return nil
		},
	},
	"moderation.target": {
		get: func(c *Config) string { return c.Moderation.Target },
		set: func(c *Config, v string) error { c.Moderation.Target = v; return nil },
	},
	"moderation.api_key_env": {
		get: func(c *Config) string { return c.Moderation.APIKeyEnv },
		set: func(c *Config, v string) error { c.Moderation.APIKeyEnv = v; return nil },
	},
	"chat.provider": {
		get: func(c *Config) string { return c.Chat.Provider },
		set: func(c *Config, v string) error { c.Chat.Provider = v; return nil },
	},
	"chat.target": {
		get: func(c *Config) string { return c.Chat.Target },
		set: func(c *Config, v string) error { c.Chat.Target = v; return nil },
	},
	"chat.model": {
		get: func(c *Config) string { return c.Chat.Model },
		set: func(c *Config, v string) error { c.Chat.Model = v; return nil },
	},
	"chat.preamble": {
		get: func(c *Config) string { return c.Chat.Preamble },
		set: func(c *Config, v string) error { c.Chat.Preamble = v; return nil },
	},
	"chat.api_key_env": {
		get: func(c *Config) string { return c.Chat.APIKeyEnv },
		set: func(c *Config, v string) error { c.Chat.APIKeyEnv = v; return nil },
	},
	"retrieval.match_threshold": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Retrieval.MatchThreshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.match_threshold: %w", err)
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("retrieval.match_threshold must be within [0,1], got %v", f)
			}
			c.Retrieval.MatchThreshold = f
			return nil
		},
	},
	"retrieval.match_count": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.MatchCount) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.match_count: %w", err)
			}
			c.Retrieval.MatchCount = n
			return nil
		},
	},
	"retrieval.min_content_length": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.MinContentLength) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.min_content_length: %w", err)
			}
			c.Retrieval.MinContentLength = n
			return nil
		},
	},
	"answer.token_budget": {
		get: func(c *Config) string { return strconv.Itoa(c.Answer.TokenBudget) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for answer.token_budget: %w", err)
			}
			if n <= 0 {
				return fmt.Errorf("answer.token_budget must be positive, got %d", n)
			}
			c.Answer.TokenBudget = n
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return listGet(c.Events.Brokers) },
		set: func(c *Config, v string) error { c.Events.Brokers = listSet(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}
