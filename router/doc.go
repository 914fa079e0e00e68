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

// Package router is the request-dispatch core: it compiles route
// patterns, ranks overlapping matches by specificity, and executes a
// filter chain with explicit continuation around the matched terminal
// handler.
//
// Pattern syntax:
//
//	/users          literal segments, matched exactly
//	/users/{id}     {name} captures one path segment
//	/files/*        trailing * captures the remainder, slashes included
//	/docs/{page*}   named tail capture
//
// Overlapping patterns are ranked by specificity: more literal segments
// first, then patterns without a tail wildcard, then fewer parameters;
// remaining ties keep registration order. Ranking picks the terminal
// handler while every matching filter still runs:
//
//	r := router.MustNew()
//	r.Filter(router.AnyMethod, "/api/*", RequireToken)
//	r.GET("/api/users/{id}", showUser)
//	r.GET("/api/users/new", newUserForm) // literal beats {id}
//
// Handlers continue the chain by calling Context.Next; returning without
// it short-circuits everything after, which is how filters reject
// requests. The dispatcher maps panics and recorded errors through a
// pluggable error handler and finalizes the buffered response exactly
// once per request.
package router
