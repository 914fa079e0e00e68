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
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ParamInt parses a path parameter as an int. It fails fast with
// ErrParamMissing or ErrParamInvalid (both mapped to 400 by the default
// error handler) rather than silently returning zero.
//
// Example:
//
//	r.GET("/users/{id}", func(c *router.Context) {
//	    id, err := c.ParamInt("id")
//	    if err != nil {
//	        c.Error(err)
//	        return
//	    }
//	    // use id...
//	})
func (c *Context) ParamInt(name string) (int, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return val, nil
}

// ParamInt64 parses a path parameter as an int64.
func (c *Context) ParamInt64(name string) (int64, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return val, nil
}

// ParamFloat64 parses a path parameter as a float64.
func (c *Context) ParamFloat64(name string) (float64, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return val, nil
}

// ParamBool parses a path parameter as a bool, accepting the forms
// strconv.ParseBool accepts.
func (c *Context) ParamBool(name string) (bool, error) {
	s := c.Param(name)
	if s == "" {
		return false, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return val, nil
}

// ParamUUID parses a path parameter as a UUID.
func (c *Context) ParamUUID(name string) (uuid.UUID, error) {
	s := c.Param(name)
	if s == "" {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	val, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return val, nil
}
