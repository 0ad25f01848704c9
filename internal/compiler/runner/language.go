package runner

import (
	"fmt"
	"strings"
)

// FilePlaceholder in a command is replaced with the source file path. A
// command without it gets the path appended.
const FilePlaceholder = "{file}"

// LanguageSpec describes how to execute one language.
type LanguageSpec struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Version   string   `yaml:"version" json:"version"`
	Extension string   `yaml:"extension" json:"extension"`
	Command   []string `yaml:"command" json:"-"`
}

// Args returns the command line for running path.
func (l LanguageSpec) Args(path string) []string {
	args := make([]string, 0, len(l.Command)+1)
	replaced := false
	for _, arg := range l.Command {
		if strings.Contains(arg, FilePlaceholder) {
			arg = strings.ReplaceAll(arg, FilePlaceholder, path)
			replaced = true
		}
		args = append(args, arg)
	}
	if !replaced {
		args = append(args, path)
	}
	return args
}

// PythonLanguage is the default registry entry.
func PythonLanguage(command string) LanguageSpec {
	if command == "" {
		command = "python3"
	}
	return LanguageSpec{
		ID:        "python",
		Name:      "Python",
		Version:   "3.x",
		Extension: ".py",
		Command:   []string{command, FilePlaceholder},
	}
}

// Registry is an ordered, case-insensitive set of languages.
type Registry struct {
	order []LanguageSpec
	byID  map[string]LanguageSpec
}

// NewRegistry validates specs and indexes them by lower-cased id.
func NewRegistry(specs ...LanguageSpec) (*Registry, error) {
	r := &Registry{byID: make(map[string]LanguageSpec, len(specs))}
	for _, spec := range specs {
		id := strings.ToLower(strings.TrimSpace(spec.ID))
		if id == "" {
			return nil, fmt.Errorf("language id is required")
		}
		if len(spec.Command) == 0 {
			return nil, fmt.Errorf("language %s: command is required", id)
		}
		if _, ok := r.byID[id]; ok {
			return nil, fmt.Errorf("language %s: duplicate id", id)
		}
		spec.ID = id
		r.byID[id] = spec
		r.order = append(r.order, spec)
	}
	return r, nil
}

// Lookup finds a language by id, ignoring case and surrounding space.
func (r *Registry) Lookup(id string) (LanguageSpec, bool) {
	spec, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	return spec, ok
}

// List returns the languages in registration order.
func (r *Registry) List() []LanguageSpec {
	out := make([]LanguageSpec, len(r.order))
	copy(out, r.order)
	return out
}

// IDs returns the language ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, spec := range r.order {
		ids[i] = spec.ID
	}
	return ids
}
