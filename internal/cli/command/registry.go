package command

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

var (
	codeField     = Field{Name: "code", Prompt: "code", Type: FieldCode, Required: true}
	languageField = Field{Name: "language", Aliases: []string{"lang"}, Prompt: "language", Type: FieldString, Default: "python"}
	sessionField  = Field{Name: "id", Aliases: []string{"session", "sessionId"}, Prompt: "session id", Type: FieldPath, Required: true}
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "compiler",
			Action:       "languages",
			Method:       http.MethodGet,
			PathTemplate: "/api/compiler/languages",
			Summary:      "list supported languages",
		},
		{
			Service:      "compiler",
			Action:       "run",
			Method:       http.MethodPost,
			PathTemplate: "/api/compiler/compile",
			Summary:      "execute code",
			Fields:       []Field{codeField, languageField},
		},
		{
			Service:      "compiler",
			Action:       "fix",
			Method:       http.MethodPost,
			PathTemplate: "/api/compiler/fix",
			Summary:      "ask the assistant to fix code",
			Fields: []Field{
				codeField,
				languageField,
				{Name: "issue", Aliases: []string{"error"}, Prompt: "issue", Type: FieldString},
			},
		},
		{
			Service:      "ai",
			Action:       "explain",
			Method:       http.MethodPost,
			PathTemplate: "/api/ai/explain",
			Summary:      "explain code",
			Fields:       []Field{codeField, languageField},
		},
		{
			Service:      "ai",
			Action:       "optimize",
			Method:       http.MethodPost,
			PathTemplate: "/api/ai/optimize",
			Summary:      "optimize code",
			Fields: []Field{
				codeField,
				languageField,
				{Name: "type", Key: "optimizationType", Aliases: []string{"optimizationType"}, Prompt: "optimization type", Type: FieldString},
			},
		},
		{
			Service:      "ai",
			Action:       "generate",
			Method:       http.MethodPost,
			PathTemplate: "/api/ai/generate",
			Summary:      "generate code from a description",
			Fields: []Field{
				{Name: "description", Aliases: []string{"desc"}, Prompt: "description", Type: FieldString, Required: true},
				languageField,
			},
		},
		{
			Service:      "format",
			Action:       "format",
			Method:       http.MethodPost,
			PathTemplate: "/api/format/format",
			Summary:      "strip trailing whitespace",
			Fields:       []Field{codeField, languageField},
		},
		{
			Service:      "format",
			Action:       "lint",
			Method:       http.MethodPost,
			PathTemplate: "/api/format/lint",
			Summary:      "report lint issues",
			Fields:       []Field{codeField, languageField},
		},
		{
			Service:      "session",
			Action:       "create",
			Method:       http.MethodPost,
			PathTemplate: "/api/session",
			Summary:      "create a session and make it current",
			Fields: []Field{
				{Name: "id", Key: "sessionId", Aliases: []string{"sessionId"}, Type: FieldString},
				{Name: "code", Type: FieldCode},
				{Name: "language", Aliases: []string{"lang"}, Type: FieldString},
				{Name: "metadata", Type: FieldJSON},
			},
		},
		{
			Service:      "session",
			Action:       "get",
			Method:       http.MethodGet,
			PathTemplate: "/api/session/:id",
			Summary:      "show a session",
			Fields:       []Field{sessionField},
		},
		{
			Service:      "session",
			Action:       "update",
			Method:       http.MethodPut,
			PathTemplate: "/api/session/:id",
			Summary:      "update a session",
			Fields: []Field{
				sessionField,
				{Name: "code", Type: FieldCode},
				{Name: "language", Aliases: []string{"lang"}, Type: FieldString},
				{Name: "metadata", Type: FieldJSON},
			},
		},
		{
			Service:      "session",
			Action:       "delete",
			Method:       http.MethodDelete,
			PathTemplate: "/api/session/:id",
			Summary:      "delete a session",
			Fields:       []Field{sessionField},
		},
		{
			Service:      "session",
			Action:       "restore",
			Method:       http.MethodPost,
			PathTemplate: "/api/session/:id/restore",
			Summary:      "bring a deleted session back from the archive",
			Fields:       []Field{sessionField},
		},
		{
			Service:      "session",
			Action:       "list",
			Method:       http.MethodGet,
			PathTemplate: "/api/session",
			Summary:      "list sessions",
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		result[cmd.Name()] = cmd
	}
	return result
}

// Names returns the registry keys in sorted order.
func Names(commands map[string]Command) []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildRequest creates HTTP request spec based on command.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)
	path, err := buildPath(cmd, params)
	if err != nil {
		return RequestSpec{}, err
	}

	var body []byte
	if cmd.Method != http.MethodGet && cmd.Method != http.MethodDelete {
		payload, err := buildPayload(cmd, params)
		if err != nil {
			return RequestSpec{}, err
		}
		body, err = json.Marshal(payload)
		if err != nil {
			return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
		}
	}

	return RequestSpec{
		Method:  cmd.Method,
		Path:    path,
		Headers: map[string]string{},
		Body:    body,
	}, nil
}

func buildPath(cmd Command, params Params) (string, error) {
	path := cmd.PathTemplate
	for _, field := range cmd.Fields {
		if field.Type != FieldPath {
			continue
		}
		placeholder := ":" + field.Name
		if !strings.Contains(path, placeholder) {
			continue
		}
		value := strings.TrimSpace(params.Get(field.Name))
		if value == "" {
			return "", fmt.Errorf("missing path parameter: %s", field.Name)
		}
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
	}
	return path, nil
}

func buildPayload(cmd Command, params Params) (map[string]interface{}, error) {
	payload := map[string]interface{}{}
	for _, field := range cmd.Fields {
		if field.Type == FieldPath {
			continue
		}
		value, ok := params[strings.ToLower(field.Name)]
		if !ok {
			if field.Default == "" {
				continue
			}
			value = field.Default
		}
		switch field.Type {
		case FieldInt:
			n, err := ParseInt(value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", field.Name, err)
			}
			payload[field.JSONKey()] = n
		case FieldJSON:
			raw, err := ParseJSON(value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", field.Name, err)
			}
			payload[field.JSONKey()] = raw
		default:
			payload[field.JSONKey()] = value
		}
	}
	return payload, nil
}
