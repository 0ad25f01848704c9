// Package provider talks to the AI completion API. Two wire formats are
// supported: OpenAI chat completions and a generic JSON prompt endpoint.
package provider

import (
	"context"
	"strings"
	"time"
)

// Task identifies what the prompt asks the model to do.
type Task string

const (
	TaskFix      Task = "fix"
	TaskExplain  Task = "explain"
	TaskOptimize Task = "optimize"
	TaskGenerate Task = "generate"
)

// Request is one completion call. Prompt is always set; the other fields
// are forwarded to providers whose wire format carries them.
type Request struct {
	Task             Task
	Prompt           string
	Language         string
	Code             string
	Issue            string
	Description      string
	OptimizationType string
}

// Provider returns the model's text reply for a request.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const (
	KindAuto    = "auto"
	KindOpenAI  = "openai"
	KindGeneric = "generic"
)

// Config selects and tunes the provider.
type Config struct {
	Provider    string        `yaml:"provider"` // auto, openai, generic
	APIKey      string        `yaml:"apiKey"`
	APIURL      string        `yaml:"apiUrl"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

const (
	DefaultModel       = "gpt-4-turbo-preview"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4000
	DefaultTimeout     = 60 * time.Second
)

// Configured reports whether both the key and the URL are set.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APIURL) != ""
}

// Kind resolves "auto" to a concrete provider kind: URLs mentioning openai
// use the chat completions format.
func (c Config) Kind() string {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case KindOpenAI:
		return KindOpenAI
	case KindGeneric:
		return KindGeneric
	}
	if strings.Contains(strings.ToLower(c.APIURL), "openai") {
		return KindOpenAI
	}
	return KindGeneric
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// New builds the provider described by cfg. It returns nil when the API is
// not configured; callers treat nil as "AI unavailable".
func New(cfg Config) Provider {
	if !cfg.Configured() {
		return nil
	}
	cfg = cfg.withDefaults()
	if cfg.Kind() == KindOpenAI {
		return NewOpenAIProvider(cfg)
	}
	return NewGenericProvider(cfg, nil)
}
