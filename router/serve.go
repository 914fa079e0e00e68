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
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// Server builds an http.Server for the router with the configured
// timeouts, wrapping the handler for h2c when enabled. The app package
// uses this to own the server lifecycle; call Serve for the simple
// blocking case.
func (r *Router) Server(addr string) *http.Server {
	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
}

// Serve starts an HTTP server on addr and blocks until it fails.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/", func(c *router.Context) {
//	    c.Text(http.StatusOK, "Hello, World!")
//	})
//	if err := r.Serve(":8080"); err != nil {
//	    log.Fatal(err)
//	}
func (r *Router) Serve(addr string) error {
	return r.Server(addr).ListenAndServe()
}

// ServeTLS starts an HTTPS server on addr and blocks until it fails.
// HTTP/2 is negotiated automatically via ALPN.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	return r.Server(addr).ListenAndServeTLS(certFile, keyFile)
}
