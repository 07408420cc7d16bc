package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/answer"
	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/search"
)

// Server is the API server for driving sync passes and querying the index.
type Server struct {
	config    Config
	indexer   *index.Indexer
	retriever *search.Retriever
	assembler *answer.Assembler
	syncOpts  index.Options
	params    ParamDefaults
	logger    *zap.Logger
	app       *fiber.App
}

// ParamDefaults are the retrieval settings applied when a request omits them.
type ParamDefaults struct {
	MatchThreshold   float64
	MatchCount       int
	MinContentLength int
}

// NewServer creates a new API server. Collaborators are injected so they can
// be shared with the CLI and the filesystem watcher.
func NewServer(
	config Config,
	indexer *index.Indexer,
	retriever *search.Retriever,
	assembler *answer.Assembler,
	syncOpts index.Options,
	params ParamDefaults,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		indexer:   indexer,
		retriever: retriever,
		assembler: assembler,
		syncOpts:  syncOpts,
		params:    params,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/sync", s.handleSync)
	app.Post("/search", s.handleSearch)
	app.Post("/ask", s.handleAsk)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
