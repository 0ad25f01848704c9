package service

import (
	"context"
	"strings"

	"codefix/internal/ai/provider"
	pkgerrors "codefix/pkg/errors"
	"codefix/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	unavailableExplanation  = "AI API is not configured or the request failed. Please check AI_API_KEY and AI_API_URL."
	DefaultOptimizationType = "performance"
)

type ExplainResult struct {
	Explanation string   `json:"explanation"`
	Concepts    []string `json:"concepts"`
	Complexity  string   `json:"complexity"`
}

type OptimizeResult struct {
	OptimizedCode string   `json:"optimizedCode"`
	Explanation   string   `json:"explanation"`
	Improvements  []string `json:"improvements"`
}

type GenerateResult struct {
	GeneratedCode string `json:"generatedCode"`
	Explanation   string `json:"explanation"`
}

// AssistService covers the explain, optimize and generate features. Unlike
// FixService it reports a missing configuration as an error; provider
// failures still degrade to a fallback result.
type AssistService struct {
	provider provider.Provider
}

func NewAssistService(p provider.Provider) *AssistService {
	return &AssistService{provider: p}
}

func (s *AssistService) ensureConfigured() error {
	if s.provider == nil {
		return pkgerrors.New(pkgerrors.AINotConfigured)
	}
	return nil
}

// complete runs the request and decodes the reply into out. When the reply
// is not JSON the raw text is returned so callers can use it as prose.
func (s *AssistService) complete(ctx context.Context, req provider.Request, out any) (raw string, ok bool) {
	text, err := s.provider.Complete(ctx, req)
	if err != nil {
		logger.Warn(ctx, "AI request failed, returning fallback",
			zap.String("task", string(req.Task)),
			zap.Error(err),
		)
		return "", false
	}
	if ParseResponse(text, out) != nil {
		return strings.TrimSpace(text), true
	}
	return "", true
}

func (s *AssistService) Explain(ctx context.Context, code, language string) (ExplainResult, error) {
	if err := s.ensureConfigured(); err != nil {
		return ExplainResult{}, err
	}
	var reply struct {
		Explanation looseString  `json:"explanation"`
		Concepts    looseStrings `json:"concepts"`
		Complexity  looseString  `json:"complexity"`
	}
	raw, ok := s.complete(ctx, provider.Request{
		Task:     provider.TaskExplain,
		Prompt:   ExplainPrompt(code, language),
		Language: language,
		Code:     code,
	}, &reply)
	if !ok {
		return ExplainResult{Explanation: unavailableExplanation, Concepts: []string{}, Complexity: "unknown"}, nil
	}
	return ExplainResult{
		Explanation: firstNonEmpty(string(reply.Explanation), raw, "Explanation not available"),
		Concepts:    nonNil(reply.Concepts),
		Complexity:  firstNonEmpty(string(reply.Complexity), "unknown"),
	}, nil
}

func (s *AssistService) Optimize(ctx context.Context, code, language, optimizationType string) (OptimizeResult, error) {
	if err := s.ensureConfigured(); err != nil {
		return OptimizeResult{}, err
	}
	optimizationType = firstNonEmpty(strings.TrimSpace(optimizationType), DefaultOptimizationType)

	var reply struct {
		OptimizedCode looseString  `json:"optimizedCode"`
		Explanation   looseString  `json:"explanation"`
		Improvements  looseStrings `json:"improvements"`
	}
	raw, ok := s.complete(ctx, provider.Request{
		Task:             provider.TaskOptimize,
		Prompt:           OptimizePrompt(code, language, optimizationType),
		Language:         language,
		Code:             code,
		OptimizationType: optimizationType,
	}, &reply)
	if !ok {
		return OptimizeResult{OptimizedCode: code, Explanation: unavailableExplanation, Improvements: []string{}}, nil
	}
	return OptimizeResult{
		OptimizedCode: firstNonEmpty(string(reply.OptimizedCode), code),
		Explanation:   firstNonEmpty(string(reply.Explanation), raw, "Code has been optimized."),
		Improvements:  nonNil(reply.Improvements),
	}, nil
}

func (s *AssistService) Generate(ctx context.Context, description, language string) (GenerateResult, error) {
	if err := s.ensureConfigured(); err != nil {
		return GenerateResult{}, err
	}
	var reply struct {
		Code          looseString `json:"code"`
		GeneratedCode looseString `json:"generatedCode"`
		Explanation   looseString `json:"explanation"`
	}
	raw, ok := s.complete(ctx, provider.Request{
		Task:        provider.TaskGenerate,
		Prompt:      GeneratePrompt(description, language),
		Language:    language,
		Description: description,
	}, &reply)
	if !ok {
		return GenerateResult{Explanation: unavailableExplanation}, nil
	}
	return GenerateResult{
		GeneratedCode: firstNonEmpty(string(reply.Code), string(reply.GeneratedCode)),
		Explanation:   firstNonEmpty(string(reply.Explanation), raw, "Code generated successfully."),
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
