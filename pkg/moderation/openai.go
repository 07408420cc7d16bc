package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultBaseURL is the default OpenAI API URL for the moderations endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// ErrProvider is returned when the moderation provider request does not succeed.
var ErrProvider = errors.New("moderation provider request failed")

// OpenAIGate submits text to OpenAI's moderations endpoint.
type OpenAIGate struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the OpenAI moderation gate.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

// NewOpenAIGate creates a moderation gate backed by OpenAI's moderations API.
func NewOpenAIGate(cfg Config) (*OpenAIGate, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
		}
	}

	return &OpenAIGate{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Check submits text for moderation, returning *FlaggedContentError when flagged.
func (g *OpenAIGate) Check(ctx context.Context, text string) error {
	jsonBody, err := json.Marshal(moderationRequest{Input: text})
	if err != nil {
		return fmt.Errorf("%w: marshaling request: %v", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/moderations", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending request: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: moderations returned status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}

	var modResp moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&modResp); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}

	for _, result := range modResp.Results {
		if result.Flagged {
			return &FlaggedContentError{Preview: Preview(text)}
		}
	}

	return nil
}

// Close releases resources held by the gate.
func (g *OpenAIGate) Close() error {
	return nil
}

var _ Gate = (*OpenAIGate)(nil)
