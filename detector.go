// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import "math"

// Detector is the single-owner orchestrator wiring the band-pass, TKEO,
// fusion, robust baseline, peak state machine, history, template matcher
// and quality gates into one synchronous per-frame pipeline. A Detector is
// single-threaded: Process must only ever be called from one goroutine at
// a time, and integrators serving multiple streams construct one Detector
// per stream.
type Detector struct {
	cfg PinchConfig

	bpAccel [3]Bandpass
	bpGyro  [3]Bandpass
	tkAccel [3]TKEO
	tkGyro  [3]TKEO

	fusion   Fusion
	baseline RobustBaseline
	fsm      PeakFSM
	hist     History
	bank     TemplateBank
	matcher  Matcher
	gates    QualityGates

	// window is scratch space for the non-template-validation path's
	// timestamp-only history lookup, sized once at construction so Process
	// never allocates.
	window []float64

	templates []PinchTemplate

	lastT   float64
	haveT   bool
	nextSeq uint64

	stats DetectorStats
}

// NewDetector validates cfg and the template bundle, pre-expands the
// template bank, and returns a ready-to-use Detector.
func NewDetector(cfg PinchConfig, templates []PinchTemplate) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bank, err := NewTemplateBank(templates)
	if err != nil {
		return nil, err
	}

	preMs, postMs := templates[0].PreMs, templates[0].PostMs
	capacity := int(math.Ceil(2 * (preMs + postMs) * cfg.FS / 1000))
	if capacity < bank.Length() {
		capacity = bank.Length()
	}

	d := &Detector{
		cfg:       cfg,
		templates: templates,
		fusion:    NewFusion(cfg.WA, cfg.WG),
		baseline:  NewRobustBaseline(cfg.MADWinS, cfg.FS),
		fsm:       NewPeakFSM(cfg.RefractoryMs / 1000),
		hist:      NewHistory(capacity),
		bank:      bank,
		gates:     NewQualityGates(cfg),
		window:    make([]float64, bank.Length()),
	}
	d.matcher = NewMatcher(&d.bank)

	for i := range d.bpAccel {
		d.bpAccel[i] = NewBandpass(cfg.LowHz, cfg.HighHz, cfg.FS)
	}
	for i := range d.bpGyro {
		d.bpGyro[i] = NewBandpass(cfg.LowHz, cfg.HighHz, cfg.FS)
	}

	return d, nil
}

// Process runs one frame through the full pipeline and returns an event if
// a confirmed peak cleared every quality gate. It returns ErrInvalidFrame
// (wrapped in a *FrameError) if the frame's timestamp does not strictly
// increase or any field is non-finite; state is unchanged in that case.
func (d *Detector) Process(f SensorFrame) (*PinchEvent, error) {
	if err := d.validateFrame(f); err != nil {
		return nil, err
	}
	d.lastT = f.T
	d.haveT = true
	d.stats.FramesProcessed++

	d.gates.NoteStreamStart(f.T)
	d.gates.ObserveGyro(f.Gx, f.Gy, f.Gz)

	axF := d.bpAccel[0].Process(float64(f.Ax))
	ayF := d.bpAccel[1].Process(float64(f.Ay))
	azF := d.bpAccel[2].Process(float64(f.Az))
	gxF := d.bpGyro[0].Process(float64(f.Gx))
	gyF := d.bpGyro[1].Process(float64(f.Gy))
	gzF := d.bpGyro[2].Process(float64(f.Gz))

	eAx := d.tkAccel[0].Process(axF)
	eAy := d.tkAccel[1].Process(ayF)
	eAz := d.tkAccel[2].Process(azF)
	eGx := d.tkGyro[0].Process(gxF)
	eGy := d.tkGyro[1].Process(gyF)
	eGz := d.tkGyro[2].Process(gzF)

	z := d.fusion.Combine(eAx, eAy, eAz, eGx, eGy, eGz)

	_, sigma := d.baseline.Update(z)
	gate := d.baseline.Gate(d.cfg.KGate)
	d.stats.Baseline = d.baseline.Baseline()
	d.stats.Sigma = sigma

	d.hist.Append(z, f.T)

	peak, confirmed := d.fsm.Step(z, gate, sigma, f.T)
	if !confirmed {
		return nil, nil
	}

	peakIdx := d.hist.NearestIndex(peak.TPeak)

	var match Match
	if d.cfg.TemplateValidation {
		match = d.matcher.Best(&d.hist, peakIdx)
		if match.NCC < d.cfg.NCCThresh {
			d.stats.noteVeto("ncc_threshold")
			return nil, nil
		}
	} else {
		tStart, tEnd := d.hist.Window(peakIdx, d.window)
		match = Match{TStart: tStart, TEnd: tEnd}
	}

	widthMs := (peak.TFallEnd - peak.TRiseStart) * 1000
	widthOK := widthMs >= d.cfg.MinWidthMs && widthMs <= d.cfg.MaxWidthMs

	result := d.gates.Evaluate(peak, match, widthOK)
	if !result.Accepted {
		d.stats.noteVeto(result.VetoReason)
		return nil, nil
	}

	d.nextSeq++
	d.stats.EventsEmitted++

	return &PinchEvent{
		Seq:        d.nextSeq,
		TPeak:      peak.TPeak,
		TStart:     match.TStart,
		TEnd:       match.TEnd,
		Confidence: result.Confidence,
		GateScore:  peak.Value,
		NCCScore:   match.NCC,
	}, nil
}

// Finalize records sessionEndT as the end of the session for bookend
// masking: a peak confirmed by any later Process call whose TPeak lies
// within IgnoreEndMs of sessionEndT is vetoed (counted as bookend_end).
// Finalize itself evaluates no peak, and events already returned by
// Process are not affected.
func (d *Detector) Finalize(sessionEndT float64) {
	d.gates.NoteSessionEnd(sessionEndT)
}

// Reset re-initializes every mutable sub-state to its start-of-stream
// value. Config and the pre-expanded template bank are untouched.
func (d *Detector) Reset() {
	for i := range d.bpAccel {
		d.bpAccel[i].Reset()
	}
	for i := range d.bpGyro {
		d.bpGyro[i].Reset()
	}
	for i := range d.tkAccel {
		d.tkAccel[i].Reset()
	}
	for i := range d.tkGyro {
		d.tkGyro[i].Reset()
	}
	d.baseline.Reset()
	d.fsm.Reset()
	d.hist.Reset()
	d.gates.Reset()
	d.lastT, d.haveT = 0, false
	d.nextSeq = 0
	d.stats = DetectorStats{}
}

// validateFrame enforces the strictly-increasing timestamp and
// all-fields-finite invariants Process requires before touching any state.
func (d *Detector) validateFrame(f SensorFrame) error {
	if d.haveT && f.T <= d.lastT {
		return &FrameError{Field: "t", Time: f.T}
	}
	fields := [6]float32{f.Ax, f.Ay, f.Az, f.Gx, f.Gy, f.Gz}
	for _, v := range fields {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return &FrameError{Field: "axis", Time: f.T}
		}
	}
	if math.IsNaN(f.T) || math.IsInf(f.T, 0) {
		return &FrameError{Field: "t", Time: f.T}
	}
	return nil
}
