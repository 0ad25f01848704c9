// Package service implements whitespace formatting and basic lint checks.
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"codefix/pkg/utils/logger"

	"go.uber.org/zap"
)

// Severity levels reported by Lint.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// FormatResult is the formatted code.
type FormatResult struct {
	FormattedCode string `json:"formattedCode"`
	Message       string `json:"message"`
}

// Issue is one lint finding. Line and Column are 1-indexed.
type Issue struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// LintResult lists the findings for one lint request.
type LintResult struct {
	Issues  []Issue `json:"issues"`
	Message string  `json:"message"`
}

// FormatService is language agnostic; language is only logged.
type FormatService struct{}

func NewFormatService() *FormatService {
	return &FormatService{}
}

// Format strips trailing whitespace from every line and trims the result.
func (s *FormatService) Format(ctx context.Context, code, language string) FormatResult {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	formatted := strings.TrimSpace(strings.Join(lines, "\n"))
	logger.Debug(ctx, "code formatted", zap.String("language", language), zap.Int("bytes", len(formatted)))
	return FormatResult{FormattedCode: formatted, Message: "Code formatted successfully"}
}

// Lint reports empty code and lines with trailing whitespace.
func (s *FormatService) Lint(ctx context.Context, code, language string) LintResult {
	issues := []Issue{}
	if strings.TrimSpace(code) == "" {
		issues = append(issues, Issue{Line: 1, Column: 1, Severity: SeverityWarning, Message: "Code is empty"})
	}
	for i, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		if trimmed == line || trimmed == "" {
			continue
		}
		issues = append(issues, Issue{
			Line:     i + 1,
			Column:   len([]rune(trimmed)) + 1,
			Severity: SeverityInfo,
			Message:  "Trailing whitespace",
		})
	}

	msg := "No issues found"
	if len(issues) > 0 {
		msg = fmt.Sprintf("%d issue(s) found", len(issues))
	}
	logger.Debug(ctx, "code linted", zap.String("language", language), zap.Int("issues", len(issues)))
	return LintResult{Issues: issues, Message: msg}
}
