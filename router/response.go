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
	"bufio"
	"bytes"
	"net"
	"net/http"
)

// Response wraps the outgoing http.ResponseWriter. Body writes are
// buffered until Commit flushes status, headers, and body to the wire in
// one step. Buffering is what lets the dispatcher discard partial output
// when a handler fails mid-write, and lets filters adjust headers after
// the terminal handler has run.
//
// Commit finalizes the response exactly once; a second Commit fails with
// ErrAlreadyCommitted. The dispatcher commits automatically after the
// chain unwinds, so handlers only call Commit for explicit early flushes
// (streaming, hijacking).
type Response struct {
	w         http.ResponseWriter
	buf       bytes.Buffer
	status    int
	size      int64
	committed bool
}

// NewResponse wraps an http.ResponseWriter. Exposed for testing filters
// and handlers outside a running server.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Header returns the header map that will be sent on Commit.
// Mutations after Commit have no effect.
func (r *Response) Header() http.Header { return r.w.Header() }

// WriteHeader records the status code for Commit. Unlike the raw
// http.ResponseWriter it does not flush headers; repeated calls before
// Commit simply overwrite the pending status.
func (r *Response) WriteHeader(code int) {
	if !r.committed {
		r.status = code
	}
}

// Write buffers body bytes until Commit. After Commit, writes go
// straight through to the underlying writer (streaming mode).
func (r *Response) Write(p []byte) (int, error) {
	if r.committed {
		n, err := r.w.Write(p)
		r.size += int64(n)
		return n, err
	}
	return r.buf.Write(p)
}

// Status returns the pending (or committed) status code, defaulting
// to 200 once anything has been written.
func (r *Response) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Size returns the number of body bytes flushed to the client.
func (r *Response) Size() int64 { return r.size }

// BodyLen returns the number of buffered, not-yet-committed body bytes.
func (r *Response) BodyLen() int { return r.buf.Len() }

// Committed reports whether the response has been finalized.
func (r *Response) Committed() bool { return r.committed }

// Commit writes the status line, headers, and buffered body to the
// client. Calling Commit twice fails with ErrAlreadyCommitted rather
// than silently corrupting output.
func (r *Response) Commit() error {
	if r.committed {
		return ErrAlreadyCommitted
	}
	r.committed = true

	r.w.WriteHeader(r.Status())
	if r.buf.Len() > 0 {
		n, err := r.w.Write(r.buf.Bytes())
		r.size += int64(n)
		r.buf.Reset()
		if err != nil {
			return err
		}
	}
	return nil
}

// Reset discards the pending status and buffered body so an error
// handler can replace partial output. Reset after Commit is a no-op and
// reports false.
func (r *Response) Reset() bool {
	if r.committed {
		return false
	}
	r.status = 0
	r.buf.Reset()
	return true
}

// Flush commits the response if needed and flushes the underlying
// writer when it supports http.Flusher.
func (r *Response) Flush() {
	if !r.committed {
		_ = r.Commit()
	}
	if f, ok := r.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker when the underlying writer does.
// Hijacking marks the response committed; the caller owns the
// connection from then on.
func (r *Response) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.w.(http.Hijacker)
	if !ok {
		return nil, nil, ErrNotHijacker
	}
	r.committed = true
	return hj.Hijack()
}
