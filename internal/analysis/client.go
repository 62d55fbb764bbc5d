// Package analysis asks an OpenAI-compatible chat model to comment on a
// processed shift. Results are advisory only.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"backoffice-backend/internal/domain"
)

type Anomaly struct {
	Severity    string `json:"severity"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Result struct {
	Summary     string    `json:"summary"`
	Anomalies   []Anomaly `json:"anomalies"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient returns nil when no API key is configured.
func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		http:    httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	MaxTokens      int               `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You review end-of-shift numbers for a burger restaurant. " +
	"Compare POS totals with the staff form, point out cash or stock anomalies, and answer as JSON " +
	`{"summary": string, "anomalies": [{"severity": "low|medium|high", "type": string, "description": string}]}.`

func (c *Client) Analyze(ctx context.Context, summary *domain.ShiftSummary, report *domain.ReconciliationReport) (*Result, error) {
	if summary == nil {
		return nil, errors.New("analysis: summary is nil")
	}
	input, err := json.Marshal(map[string]any{
		"summary":        summary,
		"reconciliation": report,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: encode input: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Shift " + summary.ShiftDate + ":\n" + string(input)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		MaxTokens:      800,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis: api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("analysis: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("analysis: empty response")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	result := &Result{}
	if err := json.Unmarshal([]byte(content), result); err != nil {
		// model ignored the JSON instruction; keep the text
		result = &Result{Summary: content}
	}
	result.Model = c.model
	result.GeneratedAt = time.Now().UTC()
	return result, nil
}
