package service

import (
	"context"
	"encoding/json"
	"fmt"

	"codefix/internal/ai/provider"
	"codefix/internal/highlight"
	"codefix/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	notConfiguredFixExplanation = "AI API is not configured. Please set AI_API_KEY and AI_API_URL in your environment."
	defaultFixExplanation       = "Code has been reviewed and fixed."
)

// FixResult is the outcome of a fix request. Highlights is Map(FixedCode,
// Changes) and its ChangeIndex values point into Changes.
type FixResult struct {
	FixedCode   string              `json:"fixedCode"`
	Explanation string              `json:"explanation"`
	Suggestions []string            `json:"suggestions"`
	Changes     []highlight.Change  `json:"changes"`
	Highlights  []highlight.Section `json:"highlights"`
}

// FixService asks the model to repair code and normalises its reply.
type FixService struct {
	provider provider.Provider
}

// NewFixService creates the service. A nil provider means the AI API is
// not configured.
func NewFixService(p provider.Provider) *FixService {
	return &FixService{provider: p}
}

// Configured reports whether an AI provider is available.
func (s *FixService) Configured() bool {
	return s.provider != nil
}

// Fix never fails: configuration, transport and parse problems come back as
// the original code with an explanation of what went wrong.
func (s *FixService) Fix(ctx context.Context, code, language, issue string) FixResult {
	if s.provider == nil {
		logger.Warn(ctx, "AI API not configured, returning original code")
		return fallbackFix(code, notConfiguredFixExplanation)
	}

	text, err := s.provider.Complete(ctx, provider.Request{
		Task:     provider.TaskFix,
		Prompt:   FixPrompt(code, language, issue),
		Language: language,
		Code:     code,
		Issue:    issue,
	})
	if err == nil {
		var reply fixReply
		if err = ParseResponse(text, &reply); err == nil {
			return buildFixResult(code, reply)
		}
	}

	logger.Warn(ctx, "AI fix failed", zap.String("language", language), zap.Error(err))
	return fallbackFix(code, fmt.Sprintf("Failed to fix code: %s. Please check your AI API configuration.", err))
}

func fallbackFix(code, explanation string) FixResult {
	return FixResult{
		FixedCode:   code,
		Explanation: explanation,
		Suggestions: []string{},
		Changes:     []highlight.Change{},
		Highlights:  []highlight.Section{},
	}
}

type fixReply struct {
	FixedCode   looseString     `json:"fixedCode"`
	Explanation looseString     `json:"explanation"`
	Suggestions looseStrings    `json:"suggestions"`
	Changes     json.RawMessage `json:"changes"`
}

type replyChange struct {
	LineStart   looseInt    `json:"lineStart"`
	LineEnd     looseInt    `json:"lineEnd"`
	CharStart   looseInt    `json:"charStart"`
	CharEnd     looseInt    `json:"charEnd"`
	OldCode     looseString `json:"oldCode"`
	NewCode     looseString `json:"newCode"`
	Explanation looseString `json:"explanation"`
	Comment     looseString `json:"comment"`
}

func buildFixResult(code string, reply fixReply) FixResult {
	result := FixResult{
		FixedCode:   firstNonEmpty(string(reply.FixedCode), code),
		Explanation: firstNonEmpty(string(reply.Explanation), defaultFixExplanation),
		Suggestions: []string(reply.Suggestions),
		Changes:     normalizeChanges(reply.Changes),
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	if len(result.Changes) == 0 && result.FixedCode != code {
		result.Changes = DeriveChanges(code, result.FixedCode)
	}
	if result.Changes == nil {
		result.Changes = []highlight.Change{}
	}

	result.Highlights = highlight.Map(result.FixedCode, result.Changes)
	if result.Highlights == nil {
		result.Highlights = []highlight.Section{}
	}
	return result
}

// normalizeChanges fills missing change fields. Zero positions count as
// missing; entries that are not objects are skipped. Default labels number
// entries by their position in the reply.
func normalizeChanges(raw json.RawMessage) []highlight.Change {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	changes := make([]highlight.Change, 0, len(items))
	for i, item := range items {
		var rc replyChange
		if json.Unmarshal(item, &rc) != nil {
			continue
		}
		label := fmt.Sprintf("Change %d", i+1)
		explanation := firstNonEmpty(string(rc.Explanation), label)
		changes = append(changes, highlight.Change{
			LineStart:   firstNonZero(int(rc.LineStart), 1),
			LineEnd:     firstNonZero(int(rc.LineEnd), int(rc.LineStart), 1),
			CharStart:   int(rc.CharStart),
			CharEnd:     firstNonZero(int(rc.CharEnd), int(rc.CharStart)),
			OldCode:     string(rc.OldCode),
			NewCode:     string(rc.NewCode),
			Explanation: explanation,
			Comment:     firstNonEmpty(string(rc.Comment), explanation),
		})
	}
	return changes
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
