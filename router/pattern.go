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

package router

import (
	"fmt"
	"strings"
)

// Params holds named parameters extracted from a matched request path.
// Tail wildcard captures are stored under the declared name, or under
// WildcardParam for anonymous "*" wildcards.
type Params map[string]string

// WildcardParam is the parameter name used for anonymous tail wildcards.
const WildcardParam = "*"

type segmentKind uint8

const (
	segLiteral segmentKind = iota // exact, case-sensitive match
	segParam                      // {name}: captures one path segment
	segWildcard                   // * or {name*}: captures the path remainder
)

// segment is one compiled piece of a route pattern.
type segment struct {
	kind    segmentKind
	literal string // literal text (segLiteral only)
	name    string // capture name (segParam and segWildcard)
}

// Pattern is the compiled form of a route pattern string.
//
// Pattern syntax:
//   - literal segments must match exactly: "/users/all"
//   - "{name}" captures a single path segment: "/users/{id}"
//   - a trailing "*" or "{name*}" captures the remainder of the path,
//     slashes included: "/files/*", "/docs/{page*}"
//
// Compiling the same pattern twice yields equal matching behavior.
// A compiled Pattern is immutable and safe for concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	wildcard bool // pattern ends with a tail capture
	literals int  // number of literal segments (drives specificity)
	params   int  // number of {name} segments
}

// CompilePattern parses a route pattern string into its matching form.
// It returns ErrInvalidPattern (wrapped) for malformed patterns:
// duplicate parameter names, a wildcard that is not the final segment,
// or an empty capture name.
func CompilePattern(raw string) (*Pattern, error) {
	p := &Pattern{raw: raw}

	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		// Empty pattern and "/" both match only the root path.
		return p, nil
	}

	seen := map[string]struct{}{}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		isLast := i == len(parts)-1

		switch {
		case part == WildcardParam:
			if !isLast {
				return nil, fmt.Errorf("%w: %q: wildcard must be the final segment", ErrInvalidPattern, raw)
			}
			p.segments = append(p.segments, segment{kind: segWildcard, name: WildcardParam})
			p.wildcard = true

		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			kind := segParam
			if strings.HasSuffix(name, WildcardParam) {
				name = strings.TrimSuffix(name, WildcardParam)
				kind = segWildcard
			}
			if name == "" {
				return nil, fmt.Errorf("%w: %q: empty parameter name", ErrInvalidPattern, raw)
			}
			if strings.ContainsAny(name, "{}*/") {
				return nil, fmt.Errorf("%w: %q: malformed parameter %q", ErrInvalidPattern, raw, part)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q: duplicate parameter %q", ErrInvalidPattern, raw, name)
			}
			seen[name] = struct{}{}

			if kind == segWildcard {
				if !isLast {
					return nil, fmt.Errorf("%w: %q: wildcard must be the final segment", ErrInvalidPattern, raw)
				}
				p.segments = append(p.segments, segment{kind: segWildcard, name: name})
				p.wildcard = true
			} else {
				p.segments = append(p.segments, segment{kind: segParam, name: name})
				p.params++
			}

		case strings.ContainsAny(part, "{}*"):
			return nil, fmt.Errorf("%w: %q: malformed segment %q", ErrInvalidPattern, raw, part)

		default:
			p.segments = append(p.segments, segment{kind: segLiteral, literal: part})
			p.literals++
		}
	}

	return p, nil
}

// MustCompilePattern is like CompilePattern but panics on a malformed
// pattern. Use in route registration where a bad pattern is a programming
// error that should abort startup.
func MustCompilePattern(raw string) *Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(fmt.Sprintf("router.MustCompilePattern: %v", err))
	}
	return p
}

// String returns the raw pattern string.
func (p *Pattern) String() string { return p.raw }

// HasWildcard reports whether the pattern ends with a tail capture.
func (p *Pattern) HasWildcard() bool { return p.wildcard }

// Match tests a concrete request path against the pattern. On a match it
// returns the extracted parameters (nil when the pattern captures nothing)
// and true. Matching walks segments left to right without allocating for
// the miss case.
func (p *Pattern) Match(path string) (Params, bool) {
	// Root-only pattern.
	if len(p.segments) == 0 {
		if path == "/" || path == "" {
			return nil, true
		}
		return nil, false
	}

	var params Params

	// Manual segment scanning: slice the path in place instead of
	// strings.Split to keep the miss path allocation-free.
	start := 0
	if len(path) > 0 && path[0] == '/' {
		start = 1
	}
	pathLen := len(path)
	seg := 0

	for start <= pathLen && seg < len(p.segments) {
		s := p.segments[seg]

		if s.kind == segWildcard {
			// Remainder of the path, slashes included. An empty
			// remainder is still a match ("/files/*" matches "/files/").
			if params == nil {
				params = make(Params, 1)
			}
			if start >= pathLen {
				params[s.name] = ""
			} else {
				params[s.name] = path[start:]
			}
			return params, true
		}

		if start >= pathLen {
			return nil, false // path ran out before the pattern did
		}

		end := start
		for end < pathLen && path[end] != '/' {
			end++
		}
		value := path[start:end]
		if value == "" {
			return nil, false // empty segment never matches
		}

		switch s.kind {
		case segLiteral:
			if s.literal != value {
				return nil, false
			}
		case segParam:
			if params == nil {
				params = make(Params, p.params)
			}
			params[s.name] = value
		}

		seg++
		start = end + 1
	}

	if seg < len(p.segments) {
		// Pattern has segments left over; only an immediate tail
		// wildcard can absorb an exhausted path.
		if p.segments[seg].kind == segWildcard {
			if params == nil {
				params = make(Params, 1)
			}
			params[p.segments[seg].name] = ""
			return params, true
		}
		return nil, false
	}

	if start <= pathLen {
		// Path has unconsumed segments beyond a non-wildcard pattern.
		if start < pathLen {
			return nil, false
		}
	}

	return params, true
}

// moreSpecific reports whether a ranks above b when both match a path.
//
// Ranking rules:
//  1. more literal segments win
//  2. at equal literal counts, a pattern without a tail wildcard ranks
//     above one with a tail wildcard (a parameter segment therefore
//     outranks a wildcard of the same length)
//  3. at equal literal counts and wildcard-ness, fewer parameters win
//
// Equal patterns keep registration order (callers must sort stably).
func moreSpecific(a, b *Pattern) bool {
	if a.literals != b.literals {
		return a.literals > b.literals
	}
	if a.wildcard != b.wildcard {
		return !a.wildcard
	}
	if a.params != b.params {
		return a.params < b.params
	}
	return false
}
