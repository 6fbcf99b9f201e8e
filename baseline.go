// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import "math"

// sigmaFromScale converts a Winsorized-MAD-like scale into a Gaussian sigma
// (the absolute-deviation-to-sigma constant sqrt(pi/2)).
const sigmaFromScale = 1.2533141373155003

// Huber clip and Winsorization constants for the robust location/scale
// update; see RobustBaseline.Update.
const (
	huberC       = 2.5
	winsorC      = 3.5
	minScale     = 1e-6
	minSigma     = 1e-3
	minScaleSeed = 1e-6
)

// RobustBaseline tracks a running location (baseline) and scale for the
// fused activity score with an O(1) exponentially-weighted Huber-M location
// and Winsorized MAD-like scale update. It is robust to the very
// excursions it is meant to detect: a single pinch should not drag the
// baseline toward it.
type RobustBaseline struct {
	alpha, beta float64

	baseline    float64
	scale       float64
	initialized bool
}

// NewRobustBaseline builds a RobustBaseline whose decay rate is derived
// from the configured MAD window (seconds) and sampling rate (Hz):
// alpha = beta = 2/(Neff+1), Neff = madWinS*fs.
func NewRobustBaseline(madWinS, fs float64) RobustBaseline {
	neff := madWinS * fs
	rate := 2 / (neff + 1)
	return RobustBaseline{alpha: rate, beta: rate}
}

// Update folds in one fused sample z and returns the updated (baseline,
// sigma) pair, sigma being the Gaussian-equivalent scale baseline+k*sigma
// gates against.
func (b *RobustBaseline) Update(z float64) (baseline, sigma float64) {
	if !b.initialized {
		b.baseline = z
		s := 0.1 * math.Abs(z)
		if s < minScaleSeed {
			s = minScaleSeed
		}
		b.scale = s
		b.initialized = true
		return b.baseline, b.Sigma()
	}

	safeScale := b.scale
	if safeScale < minScale {
		safeScale = minScale
	}

	r := z - b.baseline
	u := clip(r/safeScale, -huberC, huberC)
	b.baseline += b.alpha * safeScale * u

	absR := math.Abs(r)
	winsorized := absR
	if ceiling := winsorC * safeScale; winsorized > ceiling {
		winsorized = ceiling
	}
	b.scale = (1-b.beta)*b.scale + b.beta*winsorized

	return b.baseline, b.Sigma()
}

// Sigma returns the current Gaussian-equivalent sigma derived from scale.
func (b *RobustBaseline) Sigma() float64 {
	return b.scale * sigmaFromScale
}

// Baseline returns the current robust location estimate.
func (b *RobustBaseline) Baseline() float64 {
	return b.baseline
}

// Gate returns the instantaneous peak-detection threshold for the given
// gate multiplier: baseline + kGate*max(sigma, minSigma).
func (b *RobustBaseline) Gate(kGate float64) float64 {
	s := b.Sigma()
	if s < minSigma {
		s = minSigma
	}
	return b.baseline + kGate*s
}

// Reset clears accumulated state so the next Update behaves like the first
// sample of a fresh stream.
func (b *RobustBaseline) Reset() {
	b.baseline, b.scale, b.initialized = 0, 0, false
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
