package service_test

import (
	"context"
	"errors"
	"testing"

	"codefix/internal/ai/provider"
	"codefix/internal/ai/service"
	pkgerrors "codefix/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistNotConfigured(t *testing.T) {
	svc := service.NewAssistService(nil)
	ctx := context.Background()

	_, err := svc.Explain(ctx, "x", "python")
	assert.True(t, pkgerrors.Is(err, pkgerrors.AINotConfigured))

	_, err = svc.Optimize(ctx, "x", "python", "")
	assert.True(t, pkgerrors.Is(err, pkgerrors.AINotConfigured))

	_, err = svc.Generate(ctx, "sort a list", "python")
	require.Error(t, err)
	assert.Equal(t, 503, pkgerrors.GetCode(err).HTTPStatus())
	assert.Equal(t, "AI API configuration is missing", pkgerrors.GetError(err).Message)
}

func TestExplain(t *testing.T) {
	fake := &fakeProvider{reply: `{"explanation": "prints one", "concepts": ["print"], "complexity": "O(1)"}`}
	svc := service.NewAssistService(fake)

	result, err := svc.Explain(context.Background(), "print(1)", "python")

	require.NoError(t, err)
	assert.Equal(t, "prints one", result.Explanation)
	assert.Equal(t, []string{"print"}, result.Concepts)
	assert.Equal(t, "O(1)", result.Complexity)
	assert.Equal(t, provider.TaskExplain, fake.last().Task)
}

func TestExplainPlainTextReply(t *testing.T) {
	svc := service.NewAssistService(&fakeProvider{reply: "  It prints one.\n"})

	result, err := svc.Explain(context.Background(), "print(1)", "python")

	require.NoError(t, err)
	assert.Equal(t, "It prints one.", result.Explanation)
	assert.Equal(t, []string{}, result.Concepts)
	assert.Equal(t, "unknown", result.Complexity)
}

func TestExplainDefaults(t *testing.T) {
	svc := service.NewAssistService(&fakeProvider{reply: `{}`})

	result, err := svc.Explain(context.Background(), "print(1)", "python")

	require.NoError(t, err)
	assert.Equal(t, "Explanation not available", result.Explanation)
	assert.Equal(t, "unknown", result.Complexity)
}

func TestExplainProviderFailure(t *testing.T) {
	svc := service.NewAssistService(&fakeProvider{err: errors.New("timeout")})

	result, err := svc.Explain(context.Background(), "print(1)", "python")

	require.NoError(t, err)
	assert.Contains(t, result.Explanation, "not configured or the request failed")
	assert.Equal(t, []string{}, result.Concepts)
	assert.Equal(t, "unknown", result.Complexity)
}

func TestOptimize(t *testing.T) {
	fake := &fakeProvider{reply: `{"optimizedCode": "y", "improvements": ["faster"]}`}
	svc := service.NewAssistService(fake)

	result, err := svc.Optimize(context.Background(), "x", "python", "  ")

	require.NoError(t, err)
	assert.Equal(t, "y", result.OptimizedCode)
	assert.Equal(t, "Code has been optimized.", result.Explanation)
	assert.Equal(t, []string{"faster"}, result.Improvements)
	assert.Equal(t, service.DefaultOptimizationType, fake.last().OptimizationType)
	assert.Equal(t, provider.TaskOptimize, fake.last().Task)
}

func TestOptimizeFallbacks(t *testing.T) {
	fake := &fakeProvider{reply: `{"explanation": "already optimal"}`}
	svc := service.NewAssistService(fake)

	result, err := svc.Optimize(context.Background(), "x", "python", "readability")

	require.NoError(t, err)
	assert.Equal(t, "x", result.OptimizedCode)
	assert.Equal(t, "already optimal", result.Explanation)
	assert.Equal(t, []string{}, result.Improvements)
	assert.Equal(t, "readability", fake.last().OptimizationType)

	fake.err = errors.New("down")
	result, err = svc.Optimize(context.Background(), "x", "python", "")
	require.NoError(t, err)
	assert.Equal(t, "x", result.OptimizedCode)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		code  string
		expl  string
	}{
		{name: "code field", reply: `{"code": "a", "generatedCode": "b", "explanation": "done"}`, code: "a", expl: "done"},
		{name: "generatedCode field", reply: `{"generatedCode": "b"}`, code: "b", expl: "Code generated successfully."},
		{name: "empty object", reply: `{}`, code: "", expl: "Code generated successfully."},
		{name: "plain text", reply: "no code today", code: "", expl: "no code today"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{reply: tt.reply}
			result, err := service.NewAssistService(fake).Generate(context.Background(), "sort a list", "python")

			require.NoError(t, err)
			assert.Equal(t, tt.code, result.GeneratedCode)
			assert.Equal(t, tt.expl, result.Explanation)
			assert.Equal(t, "sort a list", fake.last().Description)
		})
	}
}
