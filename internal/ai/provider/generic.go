package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxResponseBytes = 4 << 20

// GenericProvider POSTs a JSON prompt to a custom endpoint and reads the
// reply from the response, content or text field.
type GenericProvider struct {
	httpClient *http.Client
	cfg        Config
}

// NewGenericProvider builds the provider. A nil client gets one with the
// configured timeout.
func NewGenericProvider(cfg Config, httpClient *http.Client) *GenericProvider {
	cfg = cfg.withDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &GenericProvider{httpClient: httpClient, cfg: cfg}
}

type fixBody struct {
	Prompt      string  `json:"prompt"`
	Language    string  `json:"language"`
	Code        string  `json:"code"`
	Issue       *string `json:"issue"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type taskBody struct {
	Prompt           string `json:"prompt"`
	Language         string `json:"language"`
	Code             string `json:"code,omitempty"`
	Description      string `json:"description,omitempty"`
	Task             Task   `json:"task"`
	OptimizationType string `json:"optimizationType,omitempty"`
}

func (p *GenericProvider) body(req Request) any {
	if req.Task == TaskFix {
		var issue *string
		if req.Issue != "" {
			issue = &req.Issue
		}
		return fixBody{
			Prompt:      req.Prompt,
			Language:    req.Language,
			Code:        req.Code,
			Issue:       issue,
			MaxTokens:   p.cfg.MaxTokens,
			Temperature: p.cfg.Temperature,
		}
	}
	return taskBody{
		Prompt:           req.Prompt,
		Language:         req.Language,
		Code:             req.Code,
		Description:      req.Description,
		Task:             req.Task,
		OptimizationType: req.OptimizationType,
	}
}

func (p *GenericProvider) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(p.body(req))
	if err != nil {
		return "", fmt.Errorf("encode AI request failed: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build AI request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("AI API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read AI response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("AI API error (%d): %s", resp.StatusCode, detail)
	}
	return extractText(raw), nil
}

// extractText returns the first non-empty string among the response,
// content and text fields, or the raw body when none is present.
func extractText(raw []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		for _, key := range []string{"response", "content", "text"} {
			var s string
			if json.Unmarshal(fields[key], &s) == nil && s != "" {
				return s
			}
		}
	}
	return string(raw)
}
