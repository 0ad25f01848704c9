package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const systemPrompt = "You are an expert code reviewer and fixer. Always respond with valid JSON in the exact format specified."

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	cfg    Config
}

func NewOpenAIProvider(cfg Config, opts ...option.RequestOption) *OpenAIProvider {
	cfg = cfg.withDefaults()
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(BaseURL(cfg.APIURL)),
		option.WithMaxRetries(1),
		option.WithRequestTimeout(cfg.Timeout),
	}
	return &OpenAIProvider{
		client: openai.NewClient(append(base, opts...)...),
		cfg:    cfg,
	}
}

// BaseURL strips a trailing /chat/completions so a full endpoint URL can be
// configured the same way for both providers.
func BaseURL(apiURL string) string {
	u := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return u + "/"
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(p.cfg.Temperature),
		MaxTokens:   openai.Int(int64(p.cfg.MaxTokens)),
	}
	if req.Task == TaskFix {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			detail := apiErr.Message
			if detail == "" {
				detail = apiErr.RawJSON()
			}
			return "", fmt.Errorf("AI API error (%d): %s", apiErr.StatusCode, detail)
		}
		return "", fmt.Errorf("AI API request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		text = resp.Choices[0].Message.Refusal
	}
	if text == "" {
		return "", fmt.Errorf("AI API returned an empty message")
	}
	return text, nil
}
