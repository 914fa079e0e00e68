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
	"strconv"
	"strings"
)

// acceptSpec is one parsed entry of an Accept-style header.
type acceptSpec struct {
	value   string
	quality float64
}

// Accepts checks the given content-type offers against the request's
// Accept header and returns the best match, or "" when none is
// acceptable. Quality values and wildcard specificity are honored; the
// parse result is cached per request.
//
// Examples:
//
//	// Accept: application/json, text/html;q=0.8
//	c.Accepts("application/xml", "application/json") // "application/json"
//
//	// Accept: */*
//	c.Accepts("application/json") // "application/json"
func (c *Context) Accepts(offers ...string) string {
	if len(offers) == 0 {
		return ""
	}

	accept := c.Request.Header.Get("Accept")
	if accept == "" {
		return offers[0] // no preference expressed
	}

	specs := c.acceptSpecs(accept)
	if len(specs) == 0 {
		return offers[0]
	}

	bestOffer := ""
	bestQuality := -1.0
	bestSpecificity := -1

	for _, offer := range offers {
		for _, spec := range specs {
			quality, specificity := matchMediaType(offer, spec)
			if quality <= 0 {
				continue
			}
			if quality > bestQuality || (quality == bestQuality && specificity > bestSpecificity) {
				bestOffer = offer
				bestQuality = quality
				bestSpecificity = specificity
			}
		}
	}

	return bestOffer
}

// AcceptsLanguages checks the given language tags against the request's
// Accept-Language header and returns the best match, or "" when none is
// acceptable. A bare language matches its regional variants ("en"
// matches "en-US" and vice versa).
func (c *Context) AcceptsLanguages(offers ...string) string {
	if len(offers) == 0 {
		return ""
	}
	header := c.Request.Header.Get("Accept-Language")
	if header == "" {
		return offers[0]
	}

	specs := parseAccept(header)
	if len(specs) == 0 {
		return offers[0]
	}

	bestOffer := ""
	bestQuality := -1.0

	for _, offer := range offers {
		offerLower := strings.ToLower(strings.TrimSpace(offer))
		for _, spec := range specs {
			specValue := strings.ToLower(spec.value)

			exact := specValue == offerLower || specValue == "*"
			prefix := strings.HasPrefix(specValue, offerLower+"-") ||
				strings.HasPrefix(offerLower, specValue+"-")

			if (exact || prefix) && spec.quality > bestQuality {
				bestOffer = offer
				bestQuality = spec.quality
			}
		}
	}

	return bestOffer
}

// acceptSpecs parses and caches the Accept header for this request.
func (c *Context) acceptSpecs(accept string) []acceptSpec {
	if c.cachedAcceptHeader == accept && c.cachedAcceptSpecs != nil {
		return c.cachedAcceptSpecs
	}
	specs := parseAccept(accept)
	c.cachedAcceptHeader = accept
	c.cachedAcceptSpecs = specs
	return specs
}

// parseAccept splits an Accept-style header into specs with qualities.
// Entries with an unparsable value are dropped; a missing q defaults
// to 1.0 per RFC 9110.
func parseAccept(header string) []acceptSpec {
	parts := strings.Split(header, ",")
	specs := make([]acceptSpec, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		spec := acceptSpec{quality: 1.0}
		value, rest, hasParams := strings.Cut(part, ";")
		spec.value = strings.TrimSpace(value)
		if spec.value == "" {
			continue
		}

		if hasParams {
			for _, param := range strings.Split(rest, ";") {
				key, val, ok := strings.Cut(param, "=")
				if !ok || strings.TrimSpace(key) != "q" {
					continue
				}
				q, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
				if err == nil && q >= 0 && q <= 1 {
					spec.quality = q
				}
			}
		}

		specs = append(specs, spec)
	}

	return specs
}

// matchMediaType scores an offer against a spec.
// Specificity: 3 exact, 2 subtype wildcard, 1 full wildcard, 0 no match.
func matchMediaType(offer string, spec acceptSpec) (quality float64, specificity int) {
	offerType, offerSubtype := splitMediaType(offer)
	specType, specSubtype := splitMediaType(spec.value)

	switch {
	case specType == "*" && specSubtype == "*":
		return spec.quality, 1
	case specType == offerType && specSubtype == "*":
		return spec.quality, 2
	case specType == offerType && specSubtype == offerSubtype:
		return spec.quality, 3
	default:
		return 0, 0
	}
}

// splitMediaType splits a media type into lowercase type and subtype,
// dropping any parameters.
func splitMediaType(mediaType string) (string, string) {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if t, s, ok := strings.Cut(mediaType, "/"); ok {
		return t, s
	}
	return mediaType, "*"
}
