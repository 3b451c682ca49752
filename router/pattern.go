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

package router

import (
	"fmt"
	"strings"
)

// ParamType classifies a path parameter segment.
type ParamType uint8

const (
	// ParamString matches any single path segment.
	ParamString ParamType = iota
	// ParamInt matches a single segment whose bytes form a base-10 integer.
	ParamInt
	// ParamPath matches all remaining segments, joined with "/".
	// Only valid as the final segment of a pattern.
	ParamPath
)

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segParam
)

// segment is one compiled element of a route pattern: either literal text
// that must match byte-for-byte, or a named parameter that captures a
// segment of the request path.
type segment struct {
	kind      segmentKind
	literal   string
	paramName string
	paramType ParamType
}

// CompiledPattern is an immutable, pre-parsed route template. Patterns are
// compiled once at registration time and shared read-only for the process
// lifetime.
type CompiledPattern struct {
	template string
	segments []segment
	// paramNames caches the captured names for pre-flight binding checks.
	paramNames map[string]bool
}

// Compile parses a path template into a CompiledPattern.
//
// Template syntax:
//
//	/users          literal segments, matched byte-for-byte
//	/users/<id>     string parameter, captures one segment
//	/items/<int:id> typed parameter; only "int" and "string" are recognized
//	/files/<p:path> trailing wildcard, captures the remaining segments
//
// Unknown type tags and misplaced path wildcards are compile errors,
// surfaced at registration time rather than at request time.
func Compile(template string) (*CompiledPattern, error) {
	if template == "" || template[0] != '/' {
		return nil, fmt.Errorf("%w: template %q must start with '/'", ErrPatternInvalid, template)
	}

	parts := strings.Split(template, "/")
	pattern := &CompiledPattern{
		template:   template,
		segments:   make([]segment, 0, len(parts)),
		paramNames: make(map[string]bool),
	}

	for i, part := range parts[1:] {
		last := i == len(parts)-2

		if !strings.HasPrefix(part, "<") || !strings.HasSuffix(part, ">") {
			if strings.ContainsAny(part, "<>") {
				return nil, fmt.Errorf("%w: malformed segment %q in %q", ErrPatternInvalid, part, template)
			}
			pattern.segments = append(pattern.segments, segment{kind: segLiteral, literal: part})
			continue
		}

		name := part[1 : len(part)-1]
		paramType := ParamString

		if before, after, ok := strings.Cut(name, ":"); ok {
			// The original convention puts the wildcard tag after the name
			// (<file:path>); typed parameters put the tag first (<int:id>).
			switch {
			case after == "path":
				name = before
				paramType = ParamPath
			case before == "int":
				name = after
				paramType = ParamInt
			case before == "string":
				name = after
			default:
				return nil, fmt.Errorf("%w: unknown parameter type in %q", ErrPatternInvalid, part)
			}
		}

		if name == "" {
			return nil, fmt.Errorf("%w: empty parameter name in %q", ErrPatternInvalid, template)
		}
		if pattern.paramNames[name] {
			return nil, fmt.Errorf("%w: duplicate parameter %q in %q", ErrPatternInvalid, name, template)
		}
		if paramType == ParamPath && !last {
			return nil, fmt.Errorf("%w: path wildcard %q must be the final segment of %q", ErrPatternInvalid, part, template)
		}

		pattern.paramNames[name] = true
		pattern.segments = append(pattern.segments, segment{
			kind:      segParam,
			paramName: name,
			paramType: paramType,
		})
	}

	return pattern, nil
}

// MustCompile is like Compile but panics on error. Intended for statically
// known templates in tests and setup code.
func MustCompile(template string) *CompiledPattern {
	p, err := Compile(template)
	if err != nil {
		panic(fmt.Sprintf("router.MustCompile: %v", err))
	}
	return p
}

// Template returns the original template text. Observability uses this as
// the low-cardinality route label instead of the concrete path.
func (p *CompiledPattern) Template() string {
	return p.template
}

// ParamNames returns the set of parameter names the pattern captures.
// The map is shared; callers must not mutate it.
func (p *CompiledPattern) ParamNames() map[string]bool {
	return p.paramNames
}

// Match walks the pattern against a concrete request path. On success it
// returns the captured parameters; on any mismatch it returns (nil, false)
// so the caller can try the next candidate in registration order.
//
// Matching is a pure function of (pattern, path): segment counts must be
// equal (except for a trailing path wildcard), literals match byte-for-byte,
// int parameters must parse as base-10 integers. A typed mismatch is a
// non-match, not an error.
func (p *CompiledPattern) Match(path string) (map[string]string, bool) {
	if path == "" || path[0] != '/' {
		return nil, false
	}
	rest := path[1:]

	var params map[string]string
	for i, seg := range p.segments {
		if seg.kind == segParam && seg.paramType == ParamPath {
			// Trailing wildcard consumes everything left, including "".
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[seg.paramName] = rest
			return params, true
		}

		part, remainder, more := strings.Cut(rest, "/")
		if seg.kind == segLiteral {
			if part != seg.literal {
				return nil, false
			}
		} else {
			if part == "" {
				return nil, false
			}
			if seg.paramType == ParamInt && !isInteger(part) {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, len(p.paramNames))
			}
			params[seg.paramName] = part
		}

		if i == len(p.segments)-1 {
			// Pattern exhausted: the path must be too.
			if more {
				return nil, false
			}
			if params == nil {
				params = map[string]string{}
			}
			return params, true
		}
		if !more {
			// A trailing path wildcard may capture zero remaining segments,
			// mirroring how static-file routes match their bare prefix.
			if i+1 == len(p.segments)-1 {
				if next := p.segments[i+1]; next.kind == segParam && next.paramType == ParamPath {
					if params == nil {
						params = make(map[string]string, 1)
					}
					params[next.paramName] = ""
					return params, true
				}
			}
			return nil, false
		}
		rest = remainder
	}

	return nil, false
}

// isInteger reports whether s matches ^-?[0-9]+$.
func isInteger(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
		if s == "" {
			return false
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
