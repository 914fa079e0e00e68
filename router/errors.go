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
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidPattern indicates a route pattern that failed to compile.
	// This is a configuration error and aborts startup.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrRegistryFrozen indicates a route registration after the registry
	// was frozen for serving.
	ErrRegistryFrozen = errors.New("route registry is frozen")

	// ErrNoHandlers indicates a route registered without any handler.
	ErrNoHandlers = errors.New("route requires at least one handler")

	// ErrNotFound indicates that no route matched the request path.
	ErrNotFound = errors.New("route not found")

	// ErrMethodNotAllowed indicates that the path is registered under a
	// different HTTP method than the one requested.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNotAcceptable indicates that no registered content engine
	// satisfies the request's Accept header.
	ErrNotAcceptable = errors.New("no acceptable content type")

	// ErrAlreadyCommitted indicates a second attempt to commit a response.
	ErrAlreadyCommitted = errors.New("response already committed")

	// ErrNotHijacker indicates that the underlying http.ResponseWriter
	// does not implement http.Hijacker.
	ErrNotHijacker = errors.New("response writer does not implement http.Hijacker")

	// ErrRouteNameUnknown indicates a reverse-routing lookup for a name
	// that was never registered.
	ErrRouteNameUnknown = errors.New("no route registered under name")

	// ErrParamMissing is returned when a required path parameter is absent.
	ErrParamMissing = errors.New("parameter not found")

	// ErrParamInvalid is returned when a path parameter cannot be parsed
	// into the requested type.
	ErrParamInvalid = errors.New("invalid parameter value")
)

// StatusError is an error carrying an explicit HTTP status code.
// Handlers may panic with, or collect via Context.Error, a StatusError to
// control the mapped response; the default error handler honors the code.
type StatusError struct {
	Code    int    // HTTP status code
	Message string // public message written to the response
	Err     error  // underlying cause, logged but not exposed
}

// NewStatusError builds a StatusError with the given code and message.
func NewStatusError(code int, message string) *StatusError {
	return &StatusError{Code: code, Message: message}
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StatusError) Unwrap() error { return e.Err }

// statusFor maps an error to the HTTP status code the default error
// handler responds with. Unknown errors map to 500.
func statusFor(err error) int {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Code
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrNotAcceptable):
		return http.StatusNotAcceptable
	case errors.Is(err, ErrParamInvalid), errors.Is(err, ErrParamMissing):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
