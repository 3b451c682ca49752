// Copyright 2025 The Vex Authors
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

// Package render provides the file-based template renderer used by
// template routes.
//
// Templates are resolved against an ordered list of directories: the first
// directory containing a file with the requested name wins. Files are read
// and parsed on every render, so edits take effect without a restart;
// production deployments that need caching can put one in front of the
// Renderer interface.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the template directory used when none is configured.
const DefaultDir = "templates"

// Renderer loads and renders templates from a directory search path. It is
// safe for concurrent use; rendering holds no shared state.
type Renderer struct {
	dirs  []string
	funcs template.FuncMap
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDirs sets the template directory search path, tried in order.
// Replaces the default.
func WithDirs(dirs ...string) Option {
	return func(r *Renderer) {
		if len(dirs) > 0 {
			r.dirs = dirs
		}
	}
}

// WithFuncs adds functions available to every template.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
	}
}

// New creates a Renderer. The default search path is the single directory
// "templates" relative to the working directory.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		dirs:  []string{DefaultDir},
		funcs: template.FuncMap{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.dirs) == 0 {
		return nil, ErrNoDirectories
	}
	return r, nil
}

// MustNew creates a Renderer and panics if the configuration is invalid.
func MustNew(opts ...Option) *Renderer {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("render.MustNew: %v", err))
	}
	return r
}

// Dirs returns the configured search path.
func (r *Renderer) Dirs() []string {
	return r.dirs
}

// Render loads the named template from the first directory that has it,
// parses it, and executes it with the given context.
//
// When the template exists in no directory, the error lists every path
// tried so a misconfigured search path is diagnosable from the message.
func (r *Renderer) Render(name string, context map[string]any) ([]byte, error) {
	content, err := r.load(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(r.funcs).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateParse, name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateRender, name, err)
	}
	return buf.Bytes(), nil
}

// load finds and reads the template file, walking the search path in order.
func (r *Renderer) load(name string) (string, error) {
	tried := make([]string, 0, len(r.dirs))
	for _, dir := range r.dirs {
		path := filepath.Join(dir, name)
		tried = append(tried, path)

		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading template %q: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %q (tried: %s)", ErrTemplateNotFound, name, strings.Join(tried, ", "))
}
