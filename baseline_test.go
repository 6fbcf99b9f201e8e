// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import (
	"math/rand"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
	"pgregory.net/rapid"
)

// TestRobustBaselineTracksGaussianNoise checks testable property 3: on
// pure Gaussian white noise of variance 1, after >= 10*mad_win_s*fs
// samples the baseline is near 0 and sigma is near 1.
func TestRobustBaselineTracksGaussianNoise(t *testing.T) {
	const fs = 50.0
	const madWinS = 3.0
	n := int(10 * madWinS * fs)

	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(1)}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = noise.Rand()
	}

	mean, err := stats.Mean(samples)
	require.NoError(t, err)
	stddev, err := stats.StandardDeviation(samples)
	require.NoError(t, err)
	// Sanity-check that the generated samples are close to the nominal
	// distribution; the online estimator is then checked against the
	// property's fixed bounds below.
	require.InDelta(t, 0.0, mean, 0.5)
	require.InDelta(t, 1.0, stddev, 0.3)

	b := NewRobustBaseline(madWinS, fs)
	var baseline, sigma float64
	for _, z := range samples {
		baseline, sigma = b.Update(z)
	}

	assert.Less(t, abs(baseline), 0.2, "baseline should stay near 0 on zero-mean noise")
	assert.GreaterOrEqual(t, sigma, 0.8)
	assert.LessOrEqual(t, sigma, 1.2)
}

// TestRobustBaselineInitializesFromFirstSample checks the exact first
// sample contract from the detector's design.
func TestRobustBaselineInitializesFromFirstSample(t *testing.T) {
	b := NewRobustBaseline(3.0, 50.0)
	baseline, _ := b.Update(5.0)
	assert.Equal(t, 5.0, baseline)
	assert.Equal(t, 0.5, b.scale)
}

// TestRobustBaselineResetMatchesFresh is a rapid property test: replaying
// the same stream after Reset must reproduce identical (baseline, sigma)
// trajectories to a freshly constructed estimator (testable property 4,
// specialized to this one component).
func TestRobustBaselineResetMatchesFresh(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		zs := rapid.SliceOfN(rapid.Float64Range(-10, 10), 1, 50).Draw(rt, "zs")

		b := NewRobustBaseline(3.0, 50.0)
		for _, z := range zs {
			b.Update(z)
		}
		b.Reset()

		fresh := NewRobustBaseline(3.0, 50.0)

		for _, z := range zs {
			gotBaseline, gotSigma := b.Update(z)
			wantBaseline, wantSigma := fresh.Update(z)
			if gotBaseline != wantBaseline || gotSigma != wantSigma {
				rt.Fatalf("reset replay diverged: got (%v,%v) want (%v,%v)", gotBaseline, gotSigma, wantBaseline, wantSigma)
			}
		}
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
