// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

// Bandpass is the causal pre-filter shared by every input axis: a high-pass
// section removing gravity/DC/drift below LowHz, feeding a low-pass section
// removing sensor noise above HighHz. Both sections are second-order RBJ
// Butterworth biquads (Q = 1/sqrt(2)); cascading them gives a fourth-order
// band-pass with no look-ahead.
type Bandpass struct {
	hp Biquad
	lp Biquad
}

// NewBandpass builds a Bandpass for the given sampling rate and cutoffs.
// Cutoffs are clamped into a safe range by the underlying Biquad
// constructors; callers validate LowHz < HighHz up front via
// PinchConfig.Validate.
func NewBandpass(lowHz, highHz, fs float64) Bandpass {
	return Bandpass{
		hp: NewHighpass(lowHz, fs),
		lp: NewLowpass(highHz, fs),
	}
}

// Process runs one sample through the high-pass then low-pass cascade.
func (bp *Bandpass) Process(x float64) float64 {
	return bp.lp.Process(bp.hp.Process(x))
}

// Reset clears both sections' state without changing their coefficients.
func (bp *Bandpass) Reset() {
	bp.hp.Reset()
	bp.lp.Reset()
}
