package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed templates
var templateFS embed.FS

// Registry holds the prompt library, keyed by category and name
// (e.g. "chat", "user_interaction"). The bundled templates are embedded at
// build time; an external directory can override them via Override.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewRegistry loads the embedded prompt library.
func NewRegistry() (*Registry, error) {
	r := &Registry{templates: make(map[string]string)}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".txt") {
			return nil
		}
		raw, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		category := path.Base(path.Dir(p))
		name := strings.TrimSuffix(path.Base(p), ".txt")
		r.templates[category+"/"+name] = string(raw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load embedded prompts: %w", err)
	}
	return r, nil
}

// Get returns the raw template for a "category/name" key.
func (r *Registry) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt: unknown template %s", key)
	}
	return tpl, nil
}

// Override replaces or adds a template at runtime. Used by callers that
// load site-local prompt files over the bundled defaults.
func (r *Registry) Override(key, template string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[key] = template
}

// LoadDir overrides embedded templates with site-local files laid out as
// <dir>/<category>/<name>.txt. Keys with no file in dir keep the embedded
// text.
func (r *Registry) LoadDir(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".txt") {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		r.Override(strings.TrimSuffix(filepath.ToSlash(rel), ".txt"), string(raw))
		return nil
	})
}

// Render looks up a "category/name" key and substitutes vars into it.
func (r *Registry) Render(key string, vars map[string]string) (string, error) {
	tpl, err := r.Get(key)
	if err != nil {
		return "", err
	}
	return Render(tpl, vars)
}
