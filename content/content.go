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

// Package content provides the content engines the router negotiates
// between: JSON, XML, YAML, MessagePack, and plain text. Each engine
// pairs a MIME type with a symmetric encode/decode implementation so the
// same registration drives both response rendering and request binding.
//
// Registering all of them:
//
//	r := router.MustNew(
//	    router.WithContentEngine(content.All()...),
//	)
package content

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/illab/pippo/router"
)

// MIME types served by the built-in engines.
const (
	TypeJSON    = "application/json"
	TypeXML     = "application/xml"
	TypeYAML    = "application/yaml"
	TypeMsgPack = "application/msgpack"
	TypeText    = "text/plain"
)

// All returns one instance of every built-in engine, JSON first so it
// becomes the negotiation fallback when registered in one call.
func All() []router.ContentEngine {
	return []router.ContentEngine{
		JSON{}, XML{}, YAML{}, MsgPack{}, Text{},
	}
}

// JSON encodes and decodes application/json bodies.
type JSON struct {
	// Indent pretty-prints responses when non-empty. Leave empty in
	// production; indentation is for debugging and examples.
	Indent string
}

func (JSON) ContentType() string { return TypeJSON }

func (e JSON) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if e.Indent != "" {
		enc.SetIndent("", e.Indent)
	}
	return enc.Encode(v)
}

func (JSON) Decode(r io.Reader, dst any) error {
	return json.NewDecoder(r).Decode(dst)
}

// XML encodes and decodes application/xml bodies. Encoded documents
// carry the standard XML header.
type XML struct{}

func (XML) ContentType() string { return TypeXML }

func (XML) Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

func (XML) Decode(r io.Reader, dst any) error {
	return xml.NewDecoder(r).Decode(dst)
}

// YAML encodes and decodes application/yaml bodies.
type YAML struct{}

func (YAML) ContentType() string { return TypeYAML }

func (YAML) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (YAML) Decode(r io.Reader, dst any) error {
	return yaml.NewDecoder(r).Decode(dst)
}

// MsgPack encodes and decodes application/msgpack bodies, the compact
// binary alternative for service-to-service traffic.
type MsgPack struct{}

func (MsgPack) ContentType() string { return TypeMsgPack }

func (MsgPack) Encode(w io.Writer, v any) error {
	return msgpack.NewEncoder(w).Encode(v)
}

func (MsgPack) Decode(r io.Reader, dst any) error {
	return msgpack.NewDecoder(r).Decode(dst)
}

// Text writes values as plain text. Strings, byte slices, errors, and
// fmt.Stringer pass through; everything else goes through fmt.
// Decoding requires a *string or *[]byte destination.
type Text struct{}

func (Text) ContentType() string { return TypeText }

func (Text) Encode(w io.Writer, v any) error {
	var err error
	switch val := v.(type) {
	case string:
		_, err = io.WriteString(w, val)
	case []byte:
		_, err = w.Write(val)
	case error:
		_, err = io.WriteString(w, val.Error())
	case fmt.Stringer:
		_, err = io.WriteString(w, val.String())
	default:
		_, err = fmt.Fprint(w, val)
	}
	return err
}

func (Text) Decode(r io.Reader, dst any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	switch d := dst.(type) {
	case *string:
		*d = string(b)
	case *[]byte:
		*d = b
	default:
		return fmt.Errorf("text decode: unsupported destination %T", dst)
	}
	return nil
}
