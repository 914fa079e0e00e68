// Copyright 2025 The Pippo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package template renders Mustache templates with locale-aware
// resolution. A render call for template "home" with locale "de-AT"
// tries "home_de-AT", then "home_de", then "home", so applications add
// translations file by file without touching handlers.
package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cbroglie/mustache"
)

// ErrTemplateNotFound is returned when neither a localized nor an
// unlocalized variant of the requested template exists.
var ErrTemplateNotFound = errors.New("template not found")

// DefaultExtension is the template file suffix when none is configured.
const DefaultExtension = ".mustache"

// MustacheEngine loads and renders Mustache templates from a directory.
// Parsed templates are cached; enable Reload in development to pick up
// edits without restarting.
//
// MustacheEngine implements router.TemplateRenderer.
type MustacheEngine struct {
	root   string
	ext    string
	reload bool

	partials mustache.PartialProvider

	mu    sync.RWMutex
	cache map[string]*mustache.Template
}

// MustacheOption configures a MustacheEngine.
type MustacheOption func(*MustacheEngine)

// WithRoot sets the directory templates are loaded from.
// Defaults to "templates".
func WithRoot(dir string) MustacheOption {
	return func(e *MustacheEngine) {
		e.root = dir
	}
}

// WithExtension sets the template file suffix, dot included.
func WithExtension(ext string) MustacheOption {
	return func(e *MustacheEngine) {
		e.ext = ext
	}
}

// WithReload disables the parse cache so every render re-reads the
// template file. Development only; parsing on every request is wasted
// work in production.
func WithReload(reload bool) MustacheOption {
	return func(e *MustacheEngine) {
		e.reload = reload
	}
}

// NewMustacheEngine creates a Mustache template engine.
//
//	engine, err := template.NewMustacheEngine(
//	    template.WithRoot("./templates"),
//	)
func NewMustacheEngine(opts ...MustacheOption) (*MustacheEngine, error) {
	e := &MustacheEngine{
		root:  "templates",
		ext:   DefaultExtension,
		cache: make(map[string]*mustache.Template),
	}
	for _, opt := range opts {
		opt(e)
	}

	// Partials ({{> header}}) resolve against the same directory.
	e.partials = &mustache.FileProvider{
		Paths:      []string{e.root},
		Extensions: []string{e.ext},
	}
	return e, nil
}

// MustNewMustacheEngine is NewMustacheEngine that panics on error.
func MustNewMustacheEngine(opts ...MustacheOption) *MustacheEngine {
	e, err := NewMustacheEngine(opts...)
	if err != nil {
		panic(fmt.Sprintf("template.MustNewMustacheEngine: %v", err))
	}
	return e
}

// RenderResource renders the named template into w, resolving the most
// specific localized variant that exists for the locale.
func (e *MustacheEngine) RenderResource(name string, model map[string]any, locale string, w io.Writer) error {
	path, err := e.resolve(name, locale)
	if err != nil {
		return err
	}
	tmpl, err := e.load(path)
	if err != nil {
		return err
	}
	return tmpl.FRender(w, withLocale(model, locale))
}

// RenderString renders inline template content into w. Inline content
// has no file variants; the locale is only injected into the model.
func (e *MustacheEngine) RenderString(content string, model map[string]any, locale string, w io.Writer) error {
	tmpl, err := mustache.ParseStringPartials(content, e.partials)
	if err != nil {
		return fmt.Errorf("parse template string: %w", err)
	}
	return tmpl.FRender(w, withLocale(model, locale))
}

// resolve walks the locale fallback chain and returns the first
// existing template file.
func (e *MustacheEngine) resolve(name, locale string) (string, error) {
	for _, candidate := range localeCandidates(name, locale) {
		path := filepath.Join(e.root, candidate+e.ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q (locale %q) under %s", ErrTemplateNotFound, name, locale, e.root)
}

// localeCandidates lists template names most specific first:
// name_<full locale>, name_<bare language>, name.
func localeCandidates(name, locale string) []string {
	candidates := make([]string, 0, 3)
	if locale != "" {
		candidates = append(candidates, name+"_"+locale)
		if lang, _, found := strings.Cut(locale, "-"); found && lang != "" {
			candidates = append(candidates, name+"_"+lang)
		}
	}
	return append(candidates, name)
}

// load parses the template at path, consulting the cache unless reload
// is enabled.
func (e *MustacheEngine) load(path string) (*mustache.Template, error) {
	if !e.reload {
		e.mu.RLock()
		tmpl, ok := e.cache[path]
		e.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	tmpl, err := mustache.ParseFilePartials(path, e.partials)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}

	if !e.reload {
		e.mu.Lock()
		e.cache[path] = tmpl
		e.mu.Unlock()
	}
	return tmpl, nil
}

// withLocale injects the locale into the model without clobbering a
// caller-provided value.
func withLocale(model map[string]any, locale string) map[string]any {
	if model == nil {
		model = make(map[string]any, 1)
	}
	if _, ok := model["locale"]; !ok && locale != "" {
		model["locale"] = locale
	}
	return model
}
