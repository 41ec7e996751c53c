// Package render turns a named template and a variable mapping into message
// content. Templates live under a channel prefix ("email/verification") and
// are resolved against an optional override directory before the built-in
// set embedded in the binary.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
)

// Extension is appended to a template id to form its file name.
const Extension = ".html"

// ErrTemplateNotFound is returned when no source provides the template.
var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates
var builtin embed.FS

// Renderer renders templateID with vars.
type Renderer interface {
	Render(templateID string, vars map[string]any) (string, error)
}

// HTMLRenderer renders html/template files. Missing variables are an error
// rather than an empty string. Templates are parsed on every call so edits
// in the override directory apply without a restart.
type HTMLRenderer struct {
	sources []fs.FS
}

// NewHTMLRenderer returns a renderer that looks in each source in order.
func NewHTMLRenderer(sources ...fs.FS) *HTMLRenderer {
	return &HTMLRenderer{sources: sources}
}

// NewDefaultRenderer returns a renderer over the built-in templates, with
// overrideDir consulted first when it is non-empty.
func NewDefaultRenderer(overrideDir string) (*HTMLRenderer, error) {
	embedded, err := fs.Sub(builtin, "templates")
	if err != nil {
		return nil, fmt.Errorf("opening built-in templates: %w", err)
	}
	if overrideDir == "" {
		return NewHTMLRenderer(embedded), nil
	}
	info, err := os.Stat(overrideDir)
	if err != nil {
		return nil, fmt.Errorf("templates dir %q: %w", overrideDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates dir %q is not a directory", overrideDir)
	}
	return NewHTMLRenderer(os.DirFS(overrideDir), embedded), nil
}

// Render executes templateID against vars.
func (r *HTMLRenderer) Render(templateID string, vars map[string]any) (string, error) {
	name := templateID + Extension
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid template id %q", templateID)
	}

	src, err := r.read(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(path.Base(name)).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", name, err)
	}

	if vars == nil {
		vars = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing %s: %w", name, err)
	}
	return buf.String(), nil
}

// Exists reports whether templateID resolves in any source.
func (r *HTMLRenderer) Exists(templateID string) bool {
	name := templateID + Extension
	if !fs.ValidPath(name) {
		return false
	}
	_, err := r.read(name)
	return err == nil
}

func (r *HTMLRenderer) read(name string) ([]byte, error) {
	for _, src := range r.sources {
		data, err := fs.ReadFile(src, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}
