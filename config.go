// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

// PinchConfig holds the immutable tuning parameters for a Detector. It is
// constructed explicitly by the caller; there is no package-level or global
// configuration state. An external collaborator that persists user-tunable
// parameters should build a fresh PinchConfig whenever settings change and
// construct a new Detector with it.
type PinchConfig struct {
	// Sampling rate of the incoming stream, in Hz.
	FS float64

	// Band-pass cutoffs for the causal pre-filter, in Hz.
	LowHz  float64
	HighHz float64

	// Fusion weights for the accel and gyro TKEO triad magnitudes.
	WA float64
	WG float64

	// Window, in seconds, used to derive the EW decay rate for the robust
	// baseline/scale estimator.
	MADWinS float64

	// Gate multiplier, in sigmas above baseline.
	KGate float64

	// Minimum time between two emitted events, in milliseconds.
	RefractoryMs float64

	// Minimum NCC score for a candidate match to be accepted.
	NCCThresh float64

	// Bookend masking windows, in milliseconds, from session start and end.
	IgnoreStartMs float64
	IgnoreEndMs   float64

	// Gyro motion veto: peaks are admitted only once the gyro magnitude has
	// stayed at or below GyroVetoRadS for GyroHoldMs.
	GyroVetoRadS float64
	GyroHoldMs   float64

	// Amplitude surplus gate, in sigmas above the instantaneous gate.
	AmpSurplusSigma float64

	// Minimum inter-spike interval, in milliseconds; overridden by a strong
	// NCC match (see §4.8 of the detector's design).
	ISIMs float64

	// Above-gate width bounds, in milliseconds.
	MinWidthMs float64
	MaxWidthMs float64

	// TemplateValidation enables NCC-based confidence blending. When false,
	// every admitted peak is reported with confidence 1 and NCC 0.
	TemplateValidation bool
}

// DefaultConfig returns the "balanced" preset from the detector's design.
func DefaultConfig() PinchConfig {
	return PinchConfig{
		FS:                 50,
		LowHz:              3.0,
		HighHz:             20.0,
		WA:                 1.0,
		WG:                 1.5,
		MADWinS:            3.0,
		KGate:              3.5,
		RefractoryMs:       150,
		NCCThresh:          0.60,
		IgnoreStartMs:      200,
		IgnoreEndMs:        200,
		GyroVetoRadS:       3.0,
		GyroHoldMs:         50,
		AmpSurplusSigma:    0.0,
		ISIMs:              0,
		MinWidthMs:         70,
		MaxWidthMs:         350,
		TemplateValidation: true,
	}
}

// Validate checks the configuration for the constraints construction must
// reject. It returns a *ConfigError wrapping ErrConfigInvalid on the first
// violation found.
func (c PinchConfig) Validate() error {
	if c.FS <= 0 {
		return &ConfigError{"FS", "must be positive"}
	}
	if c.HighHz <= c.LowHz {
		return &ConfigError{"HighHz", "must be greater than LowHz"}
	}
	if c.LowHz <= 0 {
		return &ConfigError{"LowHz", "must be positive"}
	}
	if c.WA < 0 {
		return &ConfigError{"WA", "must not be negative"}
	}
	if c.WG < 0 {
		return &ConfigError{"WG", "must not be negative"}
	}
	if c.MADWinS <= 0 {
		return &ConfigError{"MADWinS", "must be positive"}
	}
	if c.KGate <= 0 {
		return &ConfigError{"KGate", "must be positive"}
	}
	if c.RefractoryMs <= 0 {
		return &ConfigError{"RefractoryMs", "must be positive"}
	}
	if c.IgnoreStartMs < 0 {
		return &ConfigError{"IgnoreStartMs", "must not be negative"}
	}
	if c.IgnoreEndMs < 0 {
		return &ConfigError{"IgnoreEndMs", "must not be negative"}
	}
	if c.GyroVetoRadS <= 0 {
		return &ConfigError{"GyroVetoRadS", "must be positive"}
	}
	if c.GyroHoldMs < 0 {
		return &ConfigError{"GyroHoldMs", "must not be negative"}
	}
	if c.AmpSurplusSigma < 0 {
		return &ConfigError{"AmpSurplusSigma", "must not be negative"}
	}
	if c.ISIMs < 0 {
		return &ConfigError{"ISIMs", "must not be negative"}
	}
	if c.MinWidthMs <= 0 {
		return &ConfigError{"MinWidthMs", "must be positive"}
	}
	if c.MaxWidthMs <= 0 {
		return &ConfigError{"MaxWidthMs", "must be positive"}
	}
	if c.MinWidthMs > c.MaxWidthMs {
		return &ConfigError{"MinWidthMs", "must not exceed MaxWidthMs"}
	}
	return nil
}
