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

package render

import "errors"

var (
	// ErrNoDirectories is returned by New when no template directory is
	// configured.
	ErrNoDirectories = errors.New("render: no template directories configured")

	// ErrTemplateNotFound is returned when the named template exists in
	// none of the configured directories.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateParse is returned when a template file is found but does
	// not parse.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender is returned when a parsed template fails during
	// execution.
	ErrTemplateRender = errors.New("template render failed")
)
