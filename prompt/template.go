// Package prompt builds the message sequences sent to a ChatModel: pure
// data templates rendered with text/template, and a Builder that
// assembles system instructions, tool definitions, retrieved context,
// conversation history, and user input into one ordered slice in the
// order providers expect it.
package prompt

import (
	"bytes"
	"errors"
	"text/template"
)

// Template is a named, versioned prompt body with optional default
// variable values. It carries no behavior beyond rendering: storage and
// lookup are the PromptManager's job.
type Template struct {
	Name      string
	Version   string
	Content   string
	Variables map[string]string // default values, overridden per-call
	Metadata  map[string]any
}

// Validate reports whether the template is well-formed: non-empty name
// and content, and parseable Go template syntax.
func (t Template) Validate() error {
	if t.Name == "" {
		return errors.New("prompt: template name is required")
	}
	if t.Content == "" {
		return errors.New("prompt: template content is required")
	}
	if _, err := template.New(t.Name).Parse(t.Content); err != nil {
		return errors.New("prompt: parse error: " + err.Error())
	}
	return nil
}

// Render executes the template against vars, falling back to the
// template's default Variables for any key vars does not set.
func (t Template) Render(vars map[string]any) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	merged := make(map[string]any, len(t.Variables)+len(vars))
	for k, v := range t.Variables {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}
	tmpl, err := template.New(t.Name).Parse(t.Content)
	if err != nil {
		return "", errors.New("prompt: parse error: " + err.Error())
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, merged); err != nil {
		return "", err
	}
	return buf.String(), nil
}
