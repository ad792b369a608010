// Package llm talks to the local model endpoint. It covers the two calls
// the application needs: listing the models the endpoint serves and
// running a chat query.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/avencia/sitedigest/internal/cache"
	"github.com/avencia/sitedigest/internal/config"
)

const modelCacheTTL = time.Hour

// Client queries the model endpoint described by an APIConfig. The model
// list is cached for an hour per tags URL; the cache belongs to the
// client, not the process.
type Client struct {
	endpointURL string
	tagsURL     string
	model       string
	temperature float64
	numPredict  int
	numCtx      int
	httpClient  *http.Client
	models      *cache.Cache[string, []string]
	logger      *zap.Logger
}

// NewClient builds a client from the API configuration.
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpointURL: cfg.EndpointURL,
		tagsURL:     cfg.TagsURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		numPredict:  cfg.NumPredict,
		numCtx:      cfg.NumCtx,
		httpClient:  &http.Client{Timeout: 600 * time.Second},
		models:      cache.New[string, []string](modelCacheTTL),
		logger:      logger,
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels fetches the names of the models the endpoint serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if names, ok := c.models.Get(c.tagsURL); ok {
		return names, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tagsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tags request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tags endpoint returned status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	c.models.Set(c.tagsURL, names)
	c.logger.Debug("fetched available models", zap.Int("count", len(names)))
	return names, nil
}

// Message is one chat message in a query.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Seed        int     `json:"seed"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
}

type chatLine struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Chat sends a system+user query to the endpoint and assembles the reply
// from the message content of each JSON line in the response body.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
		Options: chatOptions{
			Seed:        42,
			NumPredict:  c.numPredict,
			NumCtx:      c.numCtx,
			Temperature: c.temperature,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var full bytes.Buffer
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var obj chatLine
		if err := json.Unmarshal(line, &obj); err != nil {
			continue
		}
		full.WriteString(obj.Message.Content)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	return full.String(), nil
}
