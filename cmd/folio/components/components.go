// Package components builds the folio runtime from a resolved configuration.
//
// Every command that touches the index (sync, search, ask, serve) needs the
// same provider wiring: a store, an embedder, the optional moderation gate,
// the chat completer, and the event publisher. Centralizing construction
// here keeps provider selection consistent across commands.
package components

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/answer"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/corpus"
	"github.com/papercomputeco/folio/pkg/dotdir"
	"github.com/papercomputeco/folio/pkg/embeddings"
	embollama "github.com/papercomputeco/folio/pkg/embeddings/ollama"
	embopenai "github.com/papercomputeco/folio/pkg/embeddings/openai"
	"github.com/papercomputeco/folio/pkg/eventstream"
	eventkafka "github.com/papercomputeco/folio/pkg/eventstream/kafka"
	eventnop "github.com/papercomputeco/folio/pkg/eventstream/nop"
	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/llm"
	llmollama "github.com/papercomputeco/folio/pkg/llm/ollama"
	llmopenai "github.com/papercomputeco/folio/pkg/llm/openai"
	"github.com/papercomputeco/folio/pkg/moderation"
	"github.com/papercomputeco/folio/pkg/search"
	"github.com/papercomputeco/folio/pkg/store"
	"github.com/papercomputeco/folio/pkg/store/inmemory"
	"github.com/papercomputeco/folio/pkg/store/postgres"
	"github.com/papercomputeco/folio/pkg/store/sqlitevec"
)

// Components is the assembled folio runtime.
type Components struct {
	Store     store.Store
	Embedder  embeddings.Embedder
	Gate      moderation.Gate
	Completer llm.Completer
	Publisher eventstream.Publisher

	Provider  corpus.Provider
	Indexer   *index.Indexer
	Retriever *search.Retriever
	Assembler *answer.Assembler

	Rules    corpus.Rules
	SyncOpts index.Options
	Params   store.MatchParams

	logger *zap.Logger
}

// Build wires every runtime component from cfg. On error, anything already
// opened is closed before returning.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Components{logger: logger}

	var err error
	if c.Store, err = newStore(ctx, cfg, logger); err != nil {
		return nil, err
	}

	if c.Embedder, err = newEmbedder(cfg); err != nil {
		c.Close()
		return nil, err
	}

	if c.Gate, err = newGate(cfg); err != nil {
		c.Close()
		return nil, err
	}

	if c.Completer, err = newCompleter(cfg); err != nil {
		c.Close()
		return nil, err
	}

	if c.Publisher, err = newPublisher(cfg, logger); err != nil {
		c.Close()
		return nil, err
	}

	c.Rules = corpus.Rules{
		ExcludedDirs: cfg.Corpus.ExcludedDirs,
		PublicDirs:   cfg.Corpus.PublicDirs,
	}
	c.SyncOpts = index.Options{
		Rules:           c.Rules,
		ModerateContent: cfg.Moderation.Enabled && cfg.Moderation.OnIndex,
	}
	c.Params = store.MatchParams{
		Threshold:        cfg.Retrieval.MatchThreshold,
		Count:            cfg.Retrieval.MatchCount,
		MinContentLength: cfg.Retrieval.MinContentLength,
	}

	// The read path (search, ask) works without a corpus; only sync needs
	// one. Indexer stays nil when no root is configured.
	if cfg.Corpus.Root != "" {
		if c.Provider, err = corpus.NewFilesystemProvider(cfg.Corpus.Root); err != nil {
			c.Close()
			return nil, err
		}

		c.Indexer = index.NewIndexer(index.Config{
			Provider:  c.Provider,
			Store:     c.Store,
			Embedder:  c.Embedder,
			Gate:      c.Gate,
			Publisher: c.Publisher,
			Logger:    logger,
		})
	}

	queryGate := c.Gate
	if !cfg.Moderation.Enabled {
		queryGate = moderation.NopGate{}
	}
	c.Retriever = search.NewRetriever(search.Config{
		Store:    c.Store,
		Embedder: c.Embedder,
		Gate:     queryGate,
		Logger:   logger,
	})

	c.Assembler = answer.NewAssembler(answer.Config{
		Completer:   c.Completer,
		Preamble:    cfg.Chat.Preamble,
		TokenBudget: cfg.Answer.TokenBudget,
		Logger:      logger,
	})

	return c, nil
}

// Close releases every component that was opened. Safe to call on a
// partially built set.
func (c *Components) Close() {
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.logger.Warn("closing publisher", zap.Error(err))
		}
	}
	if c.Completer != nil {
		_ = c.Completer.Close()
	}
	if c.Gate != nil {
		_ = c.Gate.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.logger.Warn("closing store", zap.Error(err))
		}
	}
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Storage.Provider {
	case "sqlite", "":
		dbPath := cfg.Storage.SQLitePath
		if dbPath == "" {
			dir, err := dotdir.NewManager().Target("")
			if err != nil {
				return nil, fmt.Errorf("resolving default database path: %w", err)
			}
			dbPath = filepath.Join(dir, "folio.db")
		}

		return sqlitevec.NewStore(sqlitevec.Config{
			DBPath:     dbPath,
			Dimensions: cfg.Embedding.Dimensions,
		}, logger)

	case "postgres":
		return postgres.NewStore(ctx, postgres.Config{
			ConnString: cfg.Storage.Target,
			Dimensions: cfg.Embedding.Dimensions,
		}, logger)

	case "memory":
		return inmemory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Storage.Provider)
	}
}

func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "ollama", "":
		return embollama.NewEmbedder(embollama.Config{
			BaseURL: cfg.Embedding.Target,
			Model:   cfg.Embedding.Model,
		})

	case "openai":
		return embopenai.NewEmbedder(embopenai.Config{
			BaseURL:   cfg.Embedding.Target,
			Model:     cfg.Embedding.Model,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Embedding.Provider)
	}
}

func newGate(cfg *config.Config) (moderation.Gate, error) {
	if !cfg.Moderation.Enabled {
		return moderation.NopGate{}, nil
	}

	return moderation.NewOpenAIGate(moderation.Config{
		BaseURL:   cfg.Moderation.Target,
		APIKeyEnv: cfg.Moderation.APIKeyEnv,
	})
}

func newCompleter(cfg *config.Config) (llm.Completer, error) {
	switch cfg.Chat.Provider {
	case "ollama", "":
		return llmollama.NewCompleter(llmollama.Config{
			BaseURL: cfg.Chat.Target,
			Model:   cfg.Chat.Model,
		})

	case "openai":
		return llmopenai.NewCompleter(llmopenai.Config{
			BaseURL:   cfg.Chat.Target,
			Model:     cfg.Chat.Model,
			APIKeyEnv: cfg.Chat.APIKeyEnv,
		})

	default:
		return nil, fmt.Errorf("unknown chat provider: %q", cfg.Chat.Provider)
	}
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "nop", "":
		return eventnop.NewPublisher(), nil

	case "kafka":
		return eventkafka.NewPublisher(eventkafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown events provider: %q", cfg.Events.Provider)
	}
}
