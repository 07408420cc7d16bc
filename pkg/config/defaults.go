package config

const (
	defaultStorageProvider = "sqlite"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultChatProvider = "ollama"
	defaultChatTarget   = "http://localhost:11434"
	defaultChatModel    = "llama3.2"

	defaultModerationTarget = "https://api.openai.com/v1"

	// DefaultPreamble is the persona/instruction text used when the config
	// carries none. The assembled context block and the user question are
	// appended below it.
	DefaultPreamble = "You are a helpful assistant. Answer the question using only the " +
		"provided context. If the context does not contain the answer, say so."

	defaultMatchThreshold   = 0.78
	defaultMatchCount       = 10
	defaultMinContentLength = 50

	// DefaultTokenBudget caps tokens admitted into a grounding context.
	DefaultTokenBudget = 1500

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "folio.documents"

	defaultAPIListen = ":8082"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Moderation: ModerationConfig{
			Enabled: false,
			OnIndex: false,
			Target:  defaultModerationTarget,
		},
		Chat: ChatConfig{
			Provider: defaultChatProvider,
			Target:   defaultChatTarget,
			Model:    defaultChatModel,
			Preamble: DefaultPreamble,
		},
		Retrieval: RetrievalConfig{
			MatchThreshold:   defaultMatchThreshold,
			MatchCount:       defaultMatchCount,
			MinContentLength: defaultMinContentLength,
		},
		Answer: AnswerConfig{
			TokenBudget: DefaultTokenBudget,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
