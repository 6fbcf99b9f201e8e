// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// errors.go defines the sentinel error values the detector core can return.

package pinch

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core. Use errors.Is to test for these;
// FrameError and ConfigError carry extra detail and unwrap to one of them.
var (
	// ErrInvalidFrame indicates Process was called with a non-finite field
	// or a timestamp that did not strictly increase. The frame is rejected
	// and detector state is left unchanged.
	ErrInvalidFrame = errors.New("pinch: invalid frame")

	// ErrTemplateBundleEmpty indicates NewDetector was given zero templates,
	// or templates whose data vectors are empty.
	ErrTemplateBundleEmpty = errors.New("pinch: template bundle is empty")

	// ErrTemplateBundleLengthMismatch indicates the templates in a bundle
	// do not all share the same vector length.
	ErrTemplateBundleLengthMismatch = errors.New("pinch: template bundle has mismatched vector lengths")

	// ErrConfigInvalid indicates a PinchConfig field failed validation at
	// construction time.
	ErrConfigInvalid = errors.New("pinch: invalid configuration")
)

// FrameError wraps ErrInvalidFrame with the offending field and frame time.
type FrameError struct {
	Field string
	Time  float64
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("pinch: invalid frame at t=%.6f: %s", e.Time, e.Field)
}

func (e *FrameError) Unwrap() error {
	return ErrInvalidFrame
}

// ConfigError wraps ErrConfigInvalid with the offending field name and reason.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pinch: invalid configuration field %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigInvalid
}
