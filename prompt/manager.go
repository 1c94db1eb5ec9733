package prompt

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lookatitude/beluga-ai/schema"
)

// TemplateInfo is the summary List returns for one template name: its
// latest version and metadata, without the rendered content.
type TemplateInfo struct {
	Name     string
	Version  string
	Metadata map[string]any
}

// PromptManager looks up and renders named templates. Get returns the
// stored Template (version "" means latest); Render looks it up and
// executes it directly into a one-message slice.
type PromptManager interface {
	Get(name, version string) (*Template, error)
	Render(name string, vars map[string]any) ([]schema.Message, error)
	List() []TemplateInfo
}

// ErrTemplateNotFound is returned by a Registry when no template matches
// the requested name/version.
type ErrTemplateNotFound struct {
	Name    string
	Version string
}

func (e *ErrTemplateNotFound) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("prompt: template not found: %s:%s", e.Name, e.Version)
	}
	return fmt.Sprintf("prompt: template not found: %s", e.Name)
}

// Registry is a concurrency-safe, in-memory PromptManager. Templates are
// registered once at startup (typically from the (domain, purpose)
// template set a generator or evaluator needs) and looked up by name,
// optionally pinned to a version.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]*Template // "name" (latest) and "name:version"
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Template)}
}

// Add registers t, making it the latest version under its Name and also
// addressable by "Name:Version" when Version is set.
func (r *Registry) Add(t *Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.Version != "" {
		r.byKey[t.Name+":"+t.Version] = t
	}
	r.byKey[t.Name] = t
	return nil
}

func (r *Registry) Get(name string, version string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := name
	if version != "" {
		key = name + ":" + version
	}
	t, ok := r.byKey[key]
	if !ok {
		return nil, &ErrTemplateNotFound{Name: name, Version: version}
	}
	return t, nil
}

// Render renders the latest version of name as a single system message.
func (r *Registry) Render(name string, vars map[string]any) ([]schema.Message, error) {
	t, err := r.Get(name, "")
	if err != nil {
		return nil, err
	}
	text, err := t.Render(vars)
	if err != nil {
		return nil, err
	}
	return []schema.Message{schema.NewSystemMessage(text)}, nil
}

// List returns one TemplateInfo per distinct template name, sorted.
func (r *Registry) List() []TemplateInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var infos []TemplateInfo
	for _, t := range r.byKey {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		infos = append(infos, TemplateInfo{Name: t.Name, Version: t.Version, Metadata: t.Metadata})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

var _ PromptManager = (*Registry)(nil)
