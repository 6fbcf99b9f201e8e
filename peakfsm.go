// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

// peakPhase enumerates the three states of the gated peak detector.
type peakPhase int

const (
	phaseBelowGate peakPhase = iota
	phaseRising
	phaseFalling
)

// peakCandidate is a latched local maximum awaiting confirmation once the
// signal falls back below gate.
type peakCandidate struct {
	value     float64
	gate      float64
	sigma     float64
	t         float64
	risingT0  float64
	hasRiseT0 bool
}

// PeakFSM is the below-gate/rising/falling state machine from the
// detector's gating stage. It tracks only the previous sample and gate, the
// latched candidate peak, and the last confirmed emission time; refractory
// enforcement and the rising/falling span (for the width gate) live here
// too since both need the same transition history.
type PeakFSM struct {
	phase peakPhase

	prevZ, prevG float64
	have         bool

	candidate peakCandidate
	fallStart float64
	hasFallT  bool

	lastEventT float64
	hasLastT   bool

	refractoryS float64
}

// NewPeakFSM builds a PeakFSM with the given refractory period in seconds.
func NewPeakFSM(refractoryS float64) PeakFSM {
	return PeakFSM{refractoryS: refractoryS}
}

// Confirmed is returned by Step when the FSM confirms (emits) a peak.
type Confirmed struct {
	Value      float64
	Gate       float64 // instantaneous gate at the time the peak was latched
	Sigma      float64 // instantaneous sigma at the time the peak was latched
	TPeak      float64
	TRiseStart float64
	TFallEnd   float64
}

// Step advances the FSM by one (z, g, t) sample, where sigma is the
// robust-estimator sigma backing g, and reports whether a peak was
// confirmed this step.
func (p *PeakFSM) Step(z, g, sigma, t float64) (Confirmed, bool) {
	if !p.have {
		p.prevZ, p.prevG = z, g
		p.have = true
		return Confirmed{}, false
	}

	var out Confirmed
	var confirmed bool

	switch p.phase {
	case phaseBelowGate:
		if p.prevZ <= p.prevG && z > g {
			p.phase = phaseRising
			p.candidate = peakCandidate{value: z, gate: g, sigma: sigma, t: t, risingT0: t, hasRiseT0: true}
		}

	case phaseRising:
		if z >= p.prevZ {
			if z > p.candidate.value {
				p.candidate.value = z
				p.candidate.gate = g
				p.candidate.sigma = sigma
				p.candidate.t = t
			}
		} else {
			p.phase = phaseFalling
			p.fallStart = t
			p.hasFallT = true
		}

	case phaseFalling:
		if z > g && z > p.prevZ {
			// Signal climbed back above gate and is rising again: the prior
			// candidate never confirmed, restart Rising with the new peak.
			p.phase = phaseRising
			p.candidate = peakCandidate{value: z, gate: g, sigma: sigma, t: t, risingT0: t, hasRiseT0: true}
			break
		}

		if z <= g {
			ok := p.candidate.value > p.candidate.gate
			if ok && p.hasLastT {
				ok = (p.candidate.t - p.lastEventT) >= p.refractoryS
			}
			if ok {
				out = Confirmed{
					Value:      p.candidate.value,
					Gate:       p.candidate.gate,
					Sigma:      p.candidate.sigma,
					TPeak:      p.candidate.t,
					TRiseStart: p.candidate.risingT0,
					TFallEnd:   t,
				}
				confirmed = true
				p.lastEventT = p.candidate.t
				p.hasLastT = true
			}
			p.phase = phaseBelowGate
			p.hasFallT = false
		}
	}

	p.prevZ, p.prevG = z, g
	return out, confirmed
}

// Reset returns the FSM to its start-of-stream state.
func (p *PeakFSM) Reset() {
	*p = PeakFSM{refractoryS: p.refractoryS}
}
