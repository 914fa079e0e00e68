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
	"net/http"
	"path"
	"strings"
)

// Static serves files from root under the given URL prefix via a tail
// wildcard route:
//
//	r.Static("/assets", "./public")
//	// GET /assets/css/app.css -> ./public/css/app.css
//
// Directory traversal is rejected before touching the filesystem.
func (r *Router) Static(prefix, root string) {
	r.StaticFS(prefix, http.Dir(root))
}

// StaticFS is Static with a caller-supplied http.FileSystem, enabling
// embedded assets:
//
//	//go:embed public
//	var public embed.FS
//	r.StaticFS("/assets", http.FS(public))
func (r *Router) StaticFS(prefix string, fs http.FileSystem) {
	fileServer := http.FileServer(fs)
	pattern := strings.TrimSuffix(prefix, "/") + "/*"

	r.GET(pattern, func(c *Context) {
		rel := c.Param(WildcardParam)
		if !validStaticPath(rel) {
			c.NotFound()
			return
		}
		c.Request.URL.Path = "/" + rel
		fileServer.ServeHTTP(c.Response, c.Request)
	})
}

// validStaticPath rejects traversal attempts in a wildcard capture.
func validStaticPath(rel string) bool {
	if strings.Contains(rel, "\\") {
		return false
	}
	cleaned := path.Clean("/" + rel)
	return !strings.HasPrefix(cleaned, "/..") && cleaned != ".."
}
