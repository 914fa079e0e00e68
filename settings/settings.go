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

// Package settings loads layered application configuration: defaults,
// then a config file (YAML, TOML, or JSON by extension), then
// environment variables, each layer overriding the previous. Keys are
// dotted paths; the environment maps "server.port" to PIPPO_SERVER_PORT
// under the default prefix.
//
//	cfg, err := settings.New(
//	    settings.WithDefaults(map[string]any{"server.port": 8080}),
//	    settings.WithFile("application.yaml"),
//	)
//	port := cfg.IntOr("server.port", 8080)
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Mode is the runtime mode the application runs in. Dev relaxes
// behavior (template reload, verbose logs), prod tightens it, test is
// for suites.
type Mode string

const (
	ModeDev  Mode = "dev"
	ModeTest Mode = "test"
	ModeProd Mode = "prod"
)

// DefaultEnvPrefix is the environment variable prefix when none is
// configured. The mode itself comes from <prefix>_MODE.
const DefaultEnvPrefix = "PIPPO"

// ErrKeyNotFound is returned by the strict accessors for absent keys.
var ErrKeyNotFound = fmt.Errorf("settings: key not found")

// Settings is an immutable snapshot of the merged configuration.
// Safe for concurrent reads.
type Settings struct {
	mode   Mode
	values map[string]any
}

type config struct {
	mode      Mode
	envPrefix string
	defaults  map[string]any
	files     []string
}

// Option configures loading.
type Option func(*config)

// WithDefaults seeds the bottom layer with dotted-key defaults.
func WithDefaults(defaults map[string]any) Option {
	return func(cfg *config) {
		cfg.defaults = defaults
	}
}

// WithFile adds a config file layer. Later files override earlier ones.
// The format follows the extension: .yaml/.yml, .toml, or .json. A
// missing file is a load error; guard optional files at the call site.
func WithFile(path string) Option {
	return func(cfg *config) {
		cfg.files = append(cfg.files, path)
	}
}

// WithEnvPrefix overrides the PIPPO environment prefix.
// An empty prefix disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.envPrefix = prefix
	}
}

// WithMode pins the runtime mode, overriding <prefix>_MODE.
func WithMode(mode Mode) Option {
	return func(cfg *config) {
		cfg.mode = mode
	}
}

// New loads and merges all configured layers into a snapshot.
func New(opts ...Option) (*Settings, error) {
	cfg := config{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&cfg)
	}

	values := make(map[string]any)
	for k, v := range cfg.defaults {
		values[k] = v
	}

	for _, path := range cfg.files {
		if err := mergeFile(values, path); err != nil {
			return nil, err
		}
	}

	if cfg.envPrefix != "" {
		mergeEnv(values, cfg.envPrefix)
	}

	mode := cfg.mode
	if mode == "" {
		mode = Mode(os.Getenv(cfg.envPrefix + "_MODE"))
	}
	switch mode {
	case ModeDev, ModeTest, ModeProd:
	case "":
		mode = ModeProd // unset mode defaults to the safe choice
	default:
		return nil, fmt.Errorf("settings: unknown mode %q", mode)
	}

	return &Settings{mode: mode, values: values}, nil
}

// MustNew is New that panics on a load error.
func MustNew(opts ...Option) *Settings {
	s, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("settings.MustNew: %v", err))
	}
	return s
}

// mergeFile parses one config file and overlays it onto values.
func mergeFile(values map[string]any, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", path, err)
	}

	var parsed map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &parsed)
	case ".toml":
		err = toml.Unmarshal(raw, &parsed)
	case ".json":
		err = json.Unmarshal(raw, &parsed)
	default:
		return fmt.Errorf("settings: unsupported config format %q (%s)", ext, path)
	}
	if err != nil {
		return fmt.Errorf("settings: parse %s: %w", path, err)
	}

	flatten(values, "", parsed)
	return nil
}

// flatten overlays a nested map as dotted keys.
func flatten(into map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(into, full, nested)
			continue
		}
		into[full] = value
	}
}

// mergeEnv overlays environment variables: PIPPO_SERVER_PORT=9090
// becomes "server.port" = "9090".
func mergeEnv(values map[string]any, prefix string) {
	envPrefix := prefix + "_"
	for _, pair := range os.Environ() {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		key = strings.ReplaceAll(key, "_", ".")
		if key == "mode" {
			continue // the mode is not a settings key
		}
		values[key] = value
	}
}

// Mode returns the runtime mode.
func (s *Settings) Mode() Mode { return s.mode }

// IsDev reports whether the application runs in dev mode.
func (s *Settings) IsDev() bool { return s.mode == ModeDev }

// IsTest reports whether the application runs in test mode.
func (s *Settings) IsTest() bool { return s.mode == ModeTest }

// IsProd reports whether the application runs in prod mode.
func (s *Settings) IsProd() bool { return s.mode == ModeProd }

// Has reports whether the key is set in any layer.
func (s *Settings) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns all set keys, unordered.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// String returns the value under key as a string.
func (s *Settings) String(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToStringE(v)
}

// StringOr returns the value under key as a string, or the fallback
// when the key is absent or not convertible.
func (s *Settings) StringOr(key, fallback string) string {
	if v, err := s.String(key); err == nil {
		return v
	}
	return fallback
}

// Int returns the value under key as an int.
func (s *Settings) Int(key string) (int, error) {
	v, ok := s.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToIntE(v)
}

// IntOr returns the value under key as an int, or the fallback.
func (s *Settings) IntOr(key string, fallback int) int {
	if v, err := s.Int(key); err == nil {
		return v
	}
	return fallback
}

// Bool returns the value under key as a bool.
func (s *Settings) Bool(key string) (bool, error) {
	v, ok := s.values[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToBoolE(v)
}

// BoolOr returns the value under key as a bool, or the fallback.
func (s *Settings) BoolOr(key string, fallback bool) bool {
	if v, err := s.Bool(key); err == nil {
		return v
	}
	return fallback
}

// Float64 returns the value under key as a float64.
func (s *Settings) Float64(key string) (float64, error) {
	v, ok := s.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToFloat64E(v)
}

// Duration returns the value under key as a time.Duration. String
// values use time.ParseDuration syntax ("1h30m"); bare numbers are
// nanoseconds, as cast defines.
func (s *Settings) Duration(key string) (time.Duration, error) {
	v, ok := s.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToDurationE(v)
}

// DurationOr returns the value under key as a duration, or the
// fallback.
func (s *Settings) DurationOr(key string, fallback time.Duration) time.Duration {
	if v, err := s.Duration(key); err == nil {
		return v
	}
	return fallback
}

// Strings returns the value under key as a string slice. Comma-split
// for plain strings, element-cast for lists.
func (s *Settings) Strings(key string) ([]string, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if str, isStr := v.(string); isStr {
		parts := strings.Split(str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	}
	return cast.ToStringSliceE(v)
}
