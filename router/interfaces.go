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

import "io"

// ContentEngine serializes response bodies and deserializes request
// bodies for one MIME type. Implementations are registered with the
// router and selected by content negotiation; the content package
// provides JSON, XML, YAML, MessagePack, and plain-text engines.
type ContentEngine interface {
	// ContentType returns the MIME type the engine serves,
	// e.g. "application/json".
	ContentType() string

	// Encode writes the serialized form of v to w.
	Encode(w io.Writer, v any) error

	// Decode reads a serialized value from r into v.
	Decode(r io.Reader, v any) error
}

// TemplateRenderer is the narrow contract the router needs from a
// template engine. The locale is passed explicitly on every call; the
// engine resolves localized template variants from it (full locale,
// then bare language, then unlocalized).
type TemplateRenderer interface {
	// RenderResource renders the named template with the model.
	RenderResource(name string, model map[string]any, locale string, w io.Writer) error

	// RenderString renders inline template content with the model.
	RenderString(content string, model map[string]any, locale string, w io.Writer) error
}

// ErrorHandler maps a failure raised during dispatch to an HTTP
// response. The dispatcher guarantees the context's response is still
// uncommitted (partial output discarded) when Handle is invoked.
type ErrorHandler interface {
	Handle(c *Context, err error)
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(c *Context, err error)

// Handle calls fn(c, err).
func (fn ErrorHandlerFunc) Handle(c *Context, err error) { fn(c, err) }
