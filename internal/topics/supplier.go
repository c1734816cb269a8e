// Package topics manages the debate topic catalog and its external supplier.
package topics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// GeneratedTopic is the shape the external supplier returns.
type GeneratedTopic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Supplier produces fresh debate topics. The core treats it as an opaque
// read with no contract beyond shape.
type Supplier interface {
	GenerateTopics(ctx context.Context, count int) ([]GeneratedTopic, error)
}

// PerplexityConfig holds configuration for the Perplexity supplier.
type PerplexityConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	RequestTimeout time.Duration
}

// DefaultPerplexityConfig returns default configuration.
func DefaultPerplexityConfig() PerplexityConfig {
	return PerplexityConfig{
		Model:          "llama-3.1-sonar-small-128k-online",
		BaseURL:        "https://api.perplexity.ai",
		RequestTimeout: 30 * time.Second,
	}
}

// PerplexityClient generates topics via the Perplexity chat completions API.
type PerplexityClient struct {
	cfg        PerplexityConfig
	httpClient *http.Client
}

// NewPerplexityClient creates a supplier client. Empty config fields fall
// back to defaults; the API key is required.
func NewPerplexityClient(cfg PerplexityConfig) (*PerplexityClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("topics: perplexity API key not configured")
	}
	defaults := DefaultPerplexityConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	return &PerplexityClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// jsonArrayPattern extracts the first JSON array from a model reply that
// may be wrapped in prose.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// GenerateTopics asks the model for count debate topics suitable for Dutch
// secondary-school students and parses the JSON array it returns.
// Incomplete triples are filtered out.
func (c *PerplexityClient) GenerateTopics(ctx context.Context, count int) ([]GeneratedTopic, error) {
	prompt := fmt.Sprintf(`Genereer %d actuele debatonderwerpen die geschikt zijn voor Nederlandse middelbare scholieren (12-18 jaar).

Criteria:
- Actueel in het nieuws of relevant voor jongeren
- Geschikt voor VO-niveau (niet te complex, maar wel uitdagend)
- Twee duidelijke standpunten mogelijk (voor/tegen)
- Niet te controversieel of gevoelig
- Variatie in categorieën (technologie, milieu, onderwijs, maatschappij, gezondheid)

Formatteer je antwoord als een JSON array met deze structuur:
[
  {
    "title": "Korte titel van het onderwerp",
    "description": "Beschrijving van 1-2 zinnen die het debat introduceert",
    "category": "een van: technologie, milieu, onderwijs, maatschappij, gezondheid, sport"
  }
]

Geef ALLEEN de JSON array terug, geen extra tekst.`, count)

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("encode supplier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build supplier request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call topic supplier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topic supplier returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read supplier response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode supplier response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("topic supplier returned no content")
	}

	raw := jsonArrayPattern.FindString(parsed.Choices[0].Message.Content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in supplier response")
	}

	var generated []GeneratedTopic
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("decode generated topics: %w", err)
	}

	topics := generated[:0]
	for _, t := range generated {
		if t.Title != "" && t.Description != "" && t.Category != "" {
			topics = append(topics, t)
		}
	}
	return topics, nil
}
