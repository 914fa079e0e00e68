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

package content

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illab/pippo/router"
)

type payload struct {
	Name  string `json:"name" xml:"name" yaml:"name" msgpack:"name"`
	Count int    `json:"count" xml:"count" yaml:"count" msgpack:"count"`
}

func TestJSONEngine(t *testing.T) {
	var buf bytes.Buffer
	e := JSON{}

	require.NoError(t, e.Encode(&buf, payload{Name: "a", Count: 2}))
	assert.JSONEq(t, `{"name":"a","count":2}`, buf.String())

	var got payload
	require.NoError(t, e.Decode(&buf, &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestJSONEngineIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{Indent: "  "}.Encode(&buf, map[string]int{"n": 1}))
	assert.Contains(t, buf.String(), "\n  \"n\": 1")
}

func TestXMLEngine(t *testing.T) {
	var buf bytes.Buffer
	e := XML{}

	require.NoError(t, e.Encode(&buf, payload{Name: "a", Count: 2}))
	assert.Contains(t, buf.String(), "<?xml")
	assert.Contains(t, buf.String(), "<name>a</name>")

	var got payload
	require.NoError(t, e.Decode(&buf, &got))
	assert.Equal(t, "a", got.Name)
}

func TestYAMLEngine(t *testing.T) {
	var buf bytes.Buffer
	e := YAML{}

	require.NoError(t, e.Encode(&buf, payload{Name: "a", Count: 2}))
	assert.Contains(t, buf.String(), "name: a")

	var got payload
	require.NoError(t, e.Decode(&buf, &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestMsgPackEngine(t *testing.T) {
	var buf bytes.Buffer
	e := MsgPack{}

	require.NoError(t, e.Encode(&buf, payload{Name: "a", Count: 2}))

	var got payload
	require.NoError(t, e.Decode(&buf, &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestTextEngine(t *testing.T) {
	e := Text{}

	encode := func(v any) string {
		var buf bytes.Buffer
		require.NoError(t, e.Encode(&buf, v))
		return buf.String()
	}

	assert.Equal(t, "hello", encode("hello"))
	assert.Equal(t, "raw", encode([]byte("raw")))
	assert.Equal(t, "oops", encode(errors.New("oops")))
	assert.Equal(t, "42", encode(42))

	var s string
	require.NoError(t, e.Decode(bytes.NewBufferString("in"), &s))
	assert.Equal(t, "in", s)

	var wrong int
	require.Error(t, e.Decode(bytes.NewBufferString("in"), &wrong))
}

func TestEnginesIntegrateWithNegotiation(t *testing.T) {
	r := router.MustNew(router.WithContentEngine(All()...))
	r.GET("/data", func(c *router.Context) {
		if err := c.Negotiate(http.StatusOK, payload{Name: "x", Count: 1}); err != nil {
			c.Error(err)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept", "application/yaml")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "name: x")
}
