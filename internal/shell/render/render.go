// Package render fills contract templates with derived placeholder values.
//
// Templates are opaque byte streams carrying «KEY» markers. The renderer
// substitutes every known marker verbatim and leaves unknown markers in
// place so a reviewer can spot gaps in the generated document.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrTemplateMissing is returned when the named template file does not
	// exist on disk.
	ErrTemplateMissing = errors.New("template not found")
)

// RenderError wraps an engine failure with the template name. The detail is
// meant for logs; callers surface a sanitized message.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Renderer
// =============================================================================

// Renderer fills a template with placeholder values.
type Renderer interface {
	Render(template []byte, values map[string]string) ([]byte, error)
}

// Substituter is a flat byte-substitution Renderer. Every «KEY» occurrence
// whose KEY appears in the value map is replaced verbatim; markers without a
// value survive untouched.
type Substituter struct{}

// NewSubstituter creates a flat substitution renderer.
func NewSubstituter() *Substituter {
	return &Substituter{}
}

// Render replaces «KEY» markers with their values.
func (s *Substituter) Render(template []byte, values map[string]string) ([]byte, error) {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "«"+key+"»", value)
	}
	replacer := strings.NewReplacer(pairs...)
	return []byte(replacer.Replace(string(template))), nil
}

// =============================================================================
// Template Library
// =============================================================================

// Library resolves template names to files under a base directory and writes
// rendered documents next to them.
type Library struct {
	templateDir string
	outputDir   string
	renderer    Renderer
}

// NewLibrary creates a template library over the given directories.
func NewLibrary(templateDir, outputDir string, renderer Renderer) *Library {
	return &Library{
		templateDir: templateDir,
		outputDir:   outputDir,
		renderer:    renderer,
	}
}

// Load reads the named template from disk.
func (l *Library) Load(name string) ([]byte, error) {
	path := filepath.Join(l.templateDir, filepath.Base(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrTemplateMissing)
		}
		return nil, &RenderError{Template: name, Err: err}
	}
	return data, nil
}

// RenderToFile fills the named template and writes the result under the
// output directory, returning the written path.
func (l *Library) RenderToFile(name, outputName string, values map[string]string) (string, error) {
	template, err := l.Load(name)
	if err != nil {
		return "", err
	}

	rendered, err := l.renderer.Render(template, values)
	if err != nil {
		return "", &RenderError{Template: name, Err: err}
	}

	if err := os.MkdirAll(l.outputDir, 0o755); err != nil {
		return "", &RenderError{Template: name, Err: err}
	}

	path := filepath.Join(l.outputDir, filepath.Base(outputName))
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return "", &RenderError{Template: name, Err: err}
	}
	return path, nil
}
