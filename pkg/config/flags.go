package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --root on
// "folio sync" and "folio serve").
type Flag struct {
	// Name is the long flag name (e.g. "root").
	Name string

	// Shorthand is the one-letter short flag (e.g. "r"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "corpus.root").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag registry keys to Flag structs.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag, AddFloatFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagCorpusRoot       = "root"
	FlagStorageProvider  = "storage-provider"
	FlagStorageTarget    = "storage-target"
	FlagSQLite           = "sqlite"
	FlagEmbeddingProv    = "embedding-provider"
	FlagEmbeddingTgt     = "embedding-target"
	FlagEmbeddingModel   = "embedding-model"
	FlagMatchThreshold   = "threshold"
	FlagMatchCount       = "count"
	FlagMinContentLength = "min-length"
	FlagTokenBudget      = "budget"
	FlagAPIListen        = "listen"
)

// Flags is the default flag registry shared by the folio commands.
var Flags = FlagSet{
	FlagCorpusRoot: {
		Name: "root", Shorthand: "r", ViperKey: "corpus.root",
		Description: "Corpus root directory to scan",
	},
	FlagStorageProvider: {
		Name: "storage-provider", ViperKey: "storage.provider",
		Description: "Document store provider (postgres, sqlite, memory)",
	},
	FlagStorageTarget: {
		Name: "storage-target", ViperKey: "storage.target",
		Description: "Postgres connection string",
	},
	FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to the SQLite database",
	},
	FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (openai, ollama)",
	},
	FlagEmbeddingTgt: {
		Name: "embedding-target", ViperKey: "embedding.target",
		Description: "Embedding provider base URL",
	},
	FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	FlagMatchThreshold: {
		Name: "threshold", ViperKey: "retrieval.match_threshold",
		Description: "Minimum similarity for a section to match [0,1]",
	},
	FlagMatchCount: {
		Name: "count", Shorthand: "k", ViperKey: "retrieval.match_count",
		Description: "Maximum number of matched sections",
	},
	FlagMinContentLength: {
		Name: "min-length", ViperKey: "retrieval.min_content_length",
		Description: "Minimum section content length to match",
	},
	FlagTokenBudget: {
		Name: "budget", ViperKey: "answer.token_budget",
		Description: "Token budget for the assembled context",
	},
	FlagAPIListen: {
		Name: "listen", Shorthand: "l", ViperKey: "api.listen",
		Description: "API server listen address",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *float64) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultFloat(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}

// defaultFloat returns the default float64 value for a viper key from NewDefaultConfig.
func defaultFloat(viperKey string) float64 {
	v := viper.New()
	setViperDefaults(v)
	return v.GetFloat64(viperKey)
}
