package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/moderation"
	"github.com/papercomputeco/folio/pkg/search"
	"github.com/papercomputeco/folio/pkg/store"
)

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchRequest is the body for POST /search and POST /ask.
type SearchRequest struct {
	Query string `json:"query"`

	// Optional retrieval overrides; zero values fall back to server defaults.
	MatchThreshold   float64 `json:"matchThreshold,omitempty"`
	MatchCount       int     `json:"matchCount,omitempty"`
	MinContentLength int     `json:"minContentLength,omitempty"`
}

// SearchResponse contains ranked section matches.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

// AskResponse contains a grounded answer plus the sections it drew from.
type AskResponse struct {
	Answer  string          `json:"answer"`
	Results []search.Result `json:"results"`
}

// SyncResponse reports the outcome tallies of one sync pass.
type SyncResponse struct {
	Indexed int    `json:"indexed"`
	Updated int    `json:"updated"`
	Errored int    `json:"errored"`
	Deleted int    `json:"deleted"`
	Summary string `json:"summary"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSync runs one sync pass. Returns 409 when a pass is already running.
func (s *Server) handleSync(c *fiber.Ctx) error {
	result, err := s.indexer.Sync(c.Context(), s.syncOpts)
	if err != nil {
		if errors.Is(err, index.ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("sync pass failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(SyncResponse{
		Indexed: result.Indexed,
		Updated: result.Updated,
		Errored: result.Errored,
		Deleted: result.Deleted,
		Summary: result.Summary(),
	})
}

// handleSearch embeds the query and returns ranked matches.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	req, params, err := s.parseQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	results, err := s.retriever.Retrieve(c.Context(), req.Query, params)
	if err != nil {
		return s.queryError(c, err)
	}

	return c.JSON(SearchResponse{Results: results})
}

// handleAsk retrieves context for the query and completes a grounded answer.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	req, params, err := s.parseQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	results, err := s.retriever.Retrieve(c.Context(), req.Query, params)
	if err != nil {
		return s.queryError(c, err)
	}

	answerText, err := s.assembler.Answer(c.Context(), req.Query, results)
	if err != nil {
		s.logger.Error("answer failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(AskResponse{Answer: answerText, Results: results})
}

func (s *Server) parseQuery(c *fiber.Ctx) (*SearchRequest, store.MatchParams, error) {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, store.MatchParams{}, errors.New("invalid request body")
	}
	if req.Query == "" {
		return nil, store.MatchParams{}, errors.New("query is required")
	}

	params := store.MatchParams{
		Threshold:        s.params.MatchThreshold,
		Count:            s.params.MatchCount,
		MinContentLength: s.params.MinContentLength,
	}
	if req.MatchThreshold > 0 {
		params.Threshold = req.MatchThreshold
	}
	if req.MatchCount > 0 {
		params.Count = req.MatchCount
	}
	if req.MinContentLength > 0 {
		params.MinContentLength = req.MinContentLength
	}

	return &req, params, nil
}

func (s *Server) queryError(c *fiber.Ctx, err error) error {
	var flagged *moderation.FlaggedContentError
	if errors.As(err, &flagged) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}

	s.logger.Error("query failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
}
