// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import "math"

// nccISIOverride is the NCC score at or above which the ISI guard is
// bypassed, capturing rapid valid repeats.
const nccISIOverride = 0.90

// gyroVeto tracks a run-length of consecutive samples whose raw gyro
// magnitude stays at or below a threshold, admitting a peak only once the
// run has held long enough.
type gyroVeto struct {
	thresholdRadS float64
	holdSamples   int
	run           int
}

func newGyroVeto(thresholdRadS float64, holdMs, fs float64) gyroVeto {
	hold := int(math.Round(holdMs * fs / 1000))
	if hold < 0 {
		hold = 0
	}
	return gyroVeto{thresholdRadS: thresholdRadS, holdSamples: hold}
}

// Observe folds in one frame's raw gyro magnitude, updating the run-length.
func (g *gyroVeto) Observe(gyroMagRadS float64) {
	if gyroMagRadS <= g.thresholdRadS {
		g.run++
	} else {
		g.run = 0
	}
}

// Admit reports whether the current run-length clears the hold requirement.
func (g *gyroVeto) Admit() bool {
	return g.run >= g.holdSamples
}

func (g *gyroVeto) Reset() {
	g.run = 0
}

// GateResult explains why a candidate peak was accepted or vetoed, and
// carries the blended confidence for an accepted peak.
type GateResult struct {
	Accepted   bool
	VetoReason string
	Confidence float64
}

// QualityGates applies the bookend, gyro-motion, amplitude-surplus, ISI and
// width checks, in the fixed order the detector's design requires.
type QualityGates struct {
	cfg  PinchConfig
	gyro gyroVeto

	streamStartT   float64
	haveStreamT0   bool
	sessionEndT    float64
	haveSessionEnd bool

	lastEventT float64
	haveLastT  bool
}

// NewQualityGates builds QualityGates from a validated config.
func NewQualityGates(cfg PinchConfig) QualityGates {
	return QualityGates{
		cfg:  cfg,
		gyro: newGyroVeto(cfg.GyroVetoRadS, cfg.GyroHoldMs, cfg.FS),
	}
}

// ObserveGyro folds in one frame's raw (unfiltered) gyro triad for the
// motion-veto run-length counter.
func (q *QualityGates) ObserveGyro(gx, gy, gz float32) {
	mag := math.Sqrt(float64(gx)*float64(gx) + float64(gy)*float64(gy) + float64(gz)*float64(gz))
	q.gyro.Observe(mag)
}

// NoteStreamStart records the first frame's timestamp for start-of-session
// bookend masking.
func (q *QualityGates) NoteStreamStart(t float64) {
	if !q.haveStreamT0 {
		q.streamStartT = t
		q.haveStreamT0 = true
	}
}

// NoteSessionEnd records the end-of-stream time for finalize-time bookend
// masking.
func (q *QualityGates) NoteSessionEnd(t float64) {
	q.sessionEndT = t
	q.haveSessionEnd = true
}

// Evaluate runs every gate, in order, against a confirmed peak and its best
// template match, returning whether it is accepted and, if so, its blended
// confidence.
func (q *QualityGates) Evaluate(peak Confirmed, match Match, widthOK bool) GateResult {
	if q.haveStreamT0 && peak.TPeak-q.streamStartT < q.cfg.IgnoreStartMs/1000 {
		return GateResult{VetoReason: "bookend_start"}
	}
	if q.haveSessionEnd && q.sessionEndT-peak.TPeak < q.cfg.IgnoreEndMs/1000 {
		return GateResult{VetoReason: "bookend_end"}
	}

	if !q.gyro.Admit() {
		return GateResult{VetoReason: "gyro_motion"}
	}

	safeSigma := peak.Sigma
	if safeSigma < 1e-6 {
		safeSigma = 1e-6
	}
	surplus := peak.Value - peak.Gate
	if surplus < q.cfg.AmpSurplusSigma*safeSigma {
		return GateResult{VetoReason: "amplitude_surplus"}
	}

	if q.haveLastT {
		isiOK := peak.TPeak-q.lastEventT >= q.cfg.ISIMs/1000
		if !isiOK && match.NCC < nccISIOverride {
			return GateResult{VetoReason: "isi"}
		}
	}

	if !widthOK {
		return GateResult{VetoReason: "width"}
	}

	var confidence float64
	if q.cfg.TemplateValidation {
		surplusTerm := surplus / (3 * safeSigma)
		if surplusTerm > 1 {
			surplusTerm = 1
		}
		confidence = 0.6*match.NCC + 0.4*surplusTerm
	} else {
		confidence = 1
	}
	confidence = clip(confidence, 0, 1)

	q.lastEventT = peak.TPeak
	q.haveLastT = true

	return GateResult{Accepted: true, Confidence: confidence}
}

// Reset clears all gate state.
func (q *QualityGates) Reset() {
	cfg := q.cfg
	*q = QualityGates{cfg: cfg, gyro: newGyroVeto(cfg.GyroVetoRadS, cfg.GyroHoldMs, cfg.FS)}
}
