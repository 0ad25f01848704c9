package command

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FieldType describes input type.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldJSON
	// FieldCode is source text given inline or loaded through file=path.
	FieldCode
	// FieldPath is substituted into the path template instead of the body.
	FieldPath
)

// FileParam names the parameter that loads code from disk.
const FileParam = "file"

// Field defines a CLI input field.
type Field struct {
	Name     string
	Key      string
	Aliases  []string
	Prompt   string
	Type     FieldType
	Required bool
	Default  string
}

// JSONKey is the request body key for the field.
func (f Field) JSONKey() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}

// Command defines a CLI command binding.
type Command struct {
	Service      string
	Action       string
	Method       string
	PathTemplate string
	Summary      string
	Fields       []Field
}

// Name returns "service action".
func (c Command) Name() string {
	return c.Service + " " + c.Action
}

// RequestSpec is the built HTTP request.
type RequestSpec struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Params holds parsed input params.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}

func (p Params) Canonicalize(fields []Field) {
	for _, field := range fields {
		for _, alias := range field.Aliases {
			aliasKey := strings.ToLower(alias)
			if value, ok := p[aliasKey]; ok {
				p[strings.ToLower(field.Name)] = value
				delete(p, aliasKey)
			}
		}
	}
}

// ParseParams splits key=value tokens.
func ParseParams(tokens []string) (Params, error) {
	params := Params{}
	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid param: %s", token)
		}
		params.Set(strings.TrimSpace(key), value)
	}
	return params, nil
}

// ResolveFile loads file=path into the command's code field when no
// inline code was given.
func ResolveFile(cmd Command, params Params) error {
	path := params.Get(FileParam)
	if path == "" {
		return nil
	}
	for _, field := range cmd.Fields {
		if field.Type != FieldCode {
			continue
		}
		if params.Get(field.Name) != "" {
			return nil
		}
		content, err := ReadFile(path)
		if err != nil {
			return err
		}
		params.Set(field.Name, content)
		return nil
	}
	return fmt.Errorf("%s does not accept %s=", cmd.Name(), FileParam)
}

func ParseInt(value string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	return int(n), err
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file failed: %w", err)
	}
	return string(data), nil
}

func ParseJSON(value string) (json.RawMessage, error) {
	raw := strings.TrimSpace(value)
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("invalid json content")
	}
	return json.RawMessage(raw), nil
}
