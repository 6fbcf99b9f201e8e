// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import "math"

// Biquad is a single second-order IIR section in Direct Form I, computing
//
//	y = b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
//
// and shifting its state forward. It is stateless on the boundary (no
// look-ahead), deterministic across Reset, and intended for single-threaded
// use only.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// NewBiquad returns a Biquad with the given coefficients and zeroed state.
func NewBiquad(b0, b1, b2, a1, a2 float64) Biquad {
	return Biquad{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

// Process filters one sample and advances the section's state. Non-finite
// results are coerced to 0 to keep the filter numerically safe under
// pathological input, rather than propagating NaN/Inf through the cascade.
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	if !isFiniteFloat(y) {
		y = 0
	}
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// Reset clears the section's state, leaving coefficients unchanged.
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

// clampCutoff clamps a cutoff frequency into [1e-3, 0.49*fs], per the
// filter design contract.
func clampCutoff(fc, fs float64) float64 {
	lo := 1e-3
	hi := 0.49 * fs
	if fc < lo {
		return lo
	}
	if fc > hi {
		return hi
	}
	return fc
}

// rbjQ is the Q used throughout for a maximally-flat (Butterworth) response.
const rbjQ = 1 / math.Sqrt2

// NewHighpass returns an RBJ cookbook high-pass Biquad at cutoff fc (Hz),
// sampling rate fs (Hz), with Q = 1/sqrt(2).
func NewHighpass(fc, fs float64) Biquad {
	fc = clampCutoff(fc, fs)
	w0 := 2 * math.Pi * fc / fs
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * rbjQ)

	a0 := 1 + alpha
	b0 := (1 + cosW0) / 2 / a0
	b1 := -(1 + cosW0) / a0
	b2 := (1 + cosW0) / 2 / a0
	a1 := (-2 * cosW0) / a0
	a2 := (1 - alpha) / a0

	return NewBiquad(b0, b1, b2, a1, a2)
}

// NewLowpass returns an RBJ cookbook low-pass Biquad at cutoff fc (Hz),
// sampling rate fs (Hz), with Q = 1/sqrt(2).
func NewLowpass(fc, fs float64) Biquad {
	fc = clampCutoff(fc, fs)
	w0 := 2 * math.Pi * fc / fs
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * rbjQ)

	a0 := 1 + alpha
	b0 := (1 - cosW0) / 2 / a0
	b1 := (1 - cosW0) / a0
	b2 := (1 - cosW0) / 2 / a0
	a1 := (-2 * cosW0) / a0
	a2 := (1 - alpha) / a0

	return NewBiquad(b0, b1, b2, a1, a2)
}

// isFiniteFloat reports whether f is neither NaN nor +-Inf.
func isFiniteFloat(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
