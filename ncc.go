// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// nccEarlyExit is the score at or above which the bank search stops
// scanning further candidates.
const nccEarlyExit = 0.95

// nccDenomGuard is the minimum combined-norm product below which NCC is
// reported as 0 rather than divided by a near-zero denominator.
const nccDenomGuard = 1e-6

// Match is the best-scoring template bank entry found for a confirmed peak.
type Match struct {
	TemplateIdx int
	Scale       float64
	Shift       int
	NCC         float64
	TStart      float64
	TEnd        float64
}

// Matcher searches a TemplateBank for the best match to a history window
// around a confirmed peak, with +-1 sample shift tolerance. It owns fixed
// scratch buffers sized to the bank's template length so matching after
// construction never allocates.
type Matcher struct {
	bank *TemplateBank

	window   []float64 // scratch: raw window extracted from history
	windowZM []float64 // scratch: zero-mean copy of the extracted window
	shifted  []float64 // scratch: edge-padded, shifted template copy
}

// NewMatcher builds a Matcher bound to bank.
func NewMatcher(bank *TemplateBank) Matcher {
	l := bank.Length()
	return Matcher{
		bank:     bank,
		window:   make([]float64, l),
		windowZM: make([]float64, l),
		shifted:  make([]float64, l),
	}
}

// Best extracts a window of the bank's length from hist around peakIdx and
// returns the highest-scoring match across every bank entry and shift in
// {-1, 0, +1}, stopping early once a candidate reaches nccEarlyExit.
func (m *Matcher) Best(hist *History, peakIdx int) Match {
	tStart, tEnd := hist.Window(peakIdx, m.window)

	windowNorm := zeroMeanInto(m.window, m.windowZM)

	best := Match{NCC: -2, TStart: tStart, TEnd: tEnd}

	for _, e := range m.bank.entries {
		for _, shift := range [3]int{0, -1, 1} {
			score := m.scoreShift(e, shift, windowNorm)
			if score > best.NCC {
				best = Match{
					TemplateIdx: e.sourceIdx,
					Scale:       e.scale,
					Shift:       shift,
					NCC:         score,
					TStart:      tStart,
					TEnd:        tEnd,
				}
			}
			if best.NCC >= nccEarlyExit {
				return best
			}
		}
	}
	if best.NCC < -1 {
		best.NCC = 0
	}
	return best
}

// scoreShift computes NCC between m.windowZM and entry e shifted by shift
// samples with edge padding.
func (m *Matcher) scoreShift(e expandedTemplate, shift int, windowNorm float64) float64 {
	shiftEdgePadInto(e.data, shift, m.shifted)

	var tplNorm float64
	if shift == 0 {
		// No padding happened; m.shifted is e.data unchanged, so the
		// precomputed norm still applies.
		tplNorm = e.norm
	} else {
		// Edge padding duplicates an endpoint, which is no longer zero-mean
		// and shifts the vector's own mean, so e.norm (computed before
		// padding) no longer matches. The numerator is unaffected by this —
		// it is dotted against the already zero-mean window, so any
		// constant offset in m.shifted contributes 0 — but the denominator
		// must use m.shifted's own deviation norm.
		tplNorm = deviationNorm(m.shifted)
	}

	denom := windowNorm * tplNorm
	if denom < nccDenomGuard {
		return 0
	}
	num := floats.Dot(m.windowZM, m.shifted)
	score := num / denom
	if !isFiniteFloat(score) {
		return 0
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// deviationNorm returns sqrt(sum((x-mean(v))^2)) without allocating or
// mutating v.
func deviationNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))

	var ss float64
	for _, x := range v {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss)
}

// zeroMeanInto writes the zero-mean version of src into dst (which must be
// the same length) and returns its L2 norm.
func zeroMeanInto(src, dst []float64) float64 {
	var sum float64
	for _, x := range src {
		sum += x
	}
	mean := sum / float64(len(src))

	var ss float64
	for i, x := range src {
		d := x - mean
		dst[i] = d
		ss += d * d
	}
	return math.Sqrt(ss)
}

// shiftEdgePadInto writes src shifted by shift samples into dst, padding
// with the nearest edge value where the shift runs past either end.
func shiftEdgePadInto(src []float64, shift int, dst []float64) {
	n := len(src)
	for i := 0; i < n; i++ {
		j := i - shift
		if j < 0 {
			j = 0
		}
		if j > n-1 {
			j = n - 1
		}
		dst[i] = src[j]
	}
}
