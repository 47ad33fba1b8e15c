// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidState is returned when a two-value field receives or holds a
// value outside its closed domain.
var ErrInvalidState = errors.New("invalid state")

// ParseFlag interprets a form value for one of the two-value toggles.
// Absent and falsy values mean off, truthy values mean on. Anything else
// is rejected rather than coerced.
func ParseFlag(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("%w: flag value %q", ErrInvalidState, v)
	}
}
