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

package template

import (
	"fmt"

	"golang.org/x/text/language"
)

// Languages is the validated, ordered set of languages an application
// serves. The first entry is the default. It backs both template locale
// fallback and Accept-Language negotiation via a BCP 47 matcher.
//
//	langs := template.MustNewLanguages("en", "de", "fr-CA")
//	langs.Negotiate("de-AT, en;q=0.5") // "de"
//	langs.Default()                    // "en"
type Languages struct {
	codes   []string
	matcher language.Matcher
}

// NewLanguages parses the given BCP 47 codes and builds a matcher over
// them. At least one code is required; a malformed code is a
// configuration error.
func NewLanguages(codes ...string) (*Languages, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("languages: at least one language required")
	}

	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("languages: invalid language %q: %w", code, err)
		}
		tags = append(tags, tag)
	}

	return &Languages{codes: codes, matcher: language.NewMatcher(tags)}, nil
}

// MustNewLanguages is NewLanguages that panics on a malformed code.
func MustNewLanguages(codes ...string) *Languages {
	l, err := NewLanguages(codes...)
	if err != nil {
		panic(fmt.Sprintf("template.MustNewLanguages: %v", err))
	}
	return l
}

// Negotiate matches an Accept-Language header against the registered
// languages and returns the registered code that won. With no usable
// preference the default is returned, so the result is always one of
// the registered codes.
func (l *Languages) Negotiate(acceptLanguage string) string {
	_, index := language.MatchStrings(l.matcher, acceptLanguage)
	return l.codes[index]
}

// Default returns the first registered language.
func (l *Languages) Default() string { return l.codes[0] }

// Codes returns the registered language codes in preference order.
// Callers must not mutate the returned slice.
func (l *Languages) Codes() []string { return l.codes }

// Contains reports whether code is one of the registered languages.
func (l *Languages) Contains(code string) bool {
	for _, c := range l.codes {
		if c == code {
			return true
		}
	}
	return false
}
