// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicPeak(tPeak, value, gate, sigma float64) Confirmed {
	return Confirmed{
		Value:      value,
		Gate:       gate,
		Sigma:      sigma,
		TPeak:      tPeak,
		TRiseStart: tPeak - 0.05,
		TFallEnd:   tPeak + 0.05,
	}
}

func TestGyroVetoAdmitsOnlyAfterHoldRun(t *testing.T) {
	g := newGyroVeto(1.0, 40, 50) // 40ms hold @ 50Hz -> 2 samples
	assert.False(t, g.Admit(), "no samples observed yet")
	g.Observe(0.1)
	assert.False(t, g.Admit(), "only one quiet sample so far")
	g.Observe(0.1)
	assert.True(t, g.Admit())
	g.Observe(5.0) // motion resets the run
	assert.False(t, g.Admit())
}

func TestQualityGatesAcceptsCleanPeak(t *testing.T) {
	cfg := DefaultConfig()
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(1.0, 10.0, 2.0, 1.0) // surplus 8 >> 0
	match := Match{NCC: 0.8}
	result := q.Evaluate(peak, match, true)
	require.True(t, result.Accepted)
	assert.InDelta(t, 0.6*0.8+0.4*1.0, result.Confidence, 1e-9)
}

func TestQualityGatesRejectsBookendStart(t *testing.T) {
	cfg := DefaultConfig()
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(0.1, 10.0, 2.0, 1.0) // within IgnoreStartMs=200ms of t=0
	result := q.Evaluate(peak, Match{NCC: 0.9}, true)
	assert.False(t, result.Accepted)
	assert.Equal(t, "bookend_start", result.VetoReason)
}

func TestQualityGatesRejectsBookendEnd(t *testing.T) {
	cfg := DefaultConfig()
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	q.NoteSessionEnd(10.0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(9.9, 10.0, 2.0, 1.0) // within IgnoreEndMs=200ms of t=10
	result := q.Evaluate(peak, Match{NCC: 0.9}, true)
	assert.False(t, result.Accepted)
	assert.Equal(t, "bookend_end", result.VetoReason)
}

func TestQualityGatesRejectsGyroMotion(t *testing.T) {
	cfg := DefaultConfig()
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	q.ObserveGyro(5.0, 0, 0) // exceeds GyroVetoRadS, run resets to 0

	peak := basicPeak(1.0, 10.0, 2.0, 1.0)
	result := q.Evaluate(peak, Match{NCC: 0.9}, true)
	assert.False(t, result.Accepted)
	assert.Equal(t, "gyro_motion", result.VetoReason)
}

func TestQualityGatesRejectsAmplitudeSurplus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AmpSurplusSigma = 5.0
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(1.0, 2.1, 2.0, 1.0) // surplus 0.1 < 5 sigma
	result := q.Evaluate(peak, Match{NCC: 0.9}, true)
	assert.False(t, result.Accepted)
	assert.Equal(t, "amplitude_surplus", result.VetoReason)
}

func TestQualityGatesISIRejectsCloseRepeatWithWeakNCC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ISIMs = 300
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	first := basicPeak(1.0, 10.0, 2.0, 1.0)
	res1 := q.Evaluate(first, Match{NCC: 0.9}, true)
	require.True(t, res1.Accepted)

	second := basicPeak(1.1, 10.0, 2.0, 1.0) // 100ms later, below ISIMs=300ms
	res2 := q.Evaluate(second, Match{NCC: 0.5}, true)
	assert.False(t, res2.Accepted)
	assert.Equal(t, "isi", res2.VetoReason)
}

func TestQualityGatesISIOverriddenByStrongNCC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ISIMs = 300
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	first := basicPeak(1.0, 10.0, 2.0, 1.0)
	res1 := q.Evaluate(first, Match{NCC: 0.9}, true)
	require.True(t, res1.Accepted)

	second := basicPeak(1.1, 10.0, 2.0, 1.0) // 100ms later, below ISIMs=300ms
	res2 := q.Evaluate(second, Match{NCC: 0.95}, true)
	assert.True(t, res2.Accepted, "NCC >= 0.90 should bypass the ISI guard")
}

func TestQualityGatesRejectsWidth(t *testing.T) {
	cfg := DefaultConfig()
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(1.0, 10.0, 2.0, 1.0)
	result := q.Evaluate(peak, Match{NCC: 0.9}, false)
	assert.False(t, result.Accepted)
	assert.Equal(t, "width", result.VetoReason)
}

func TestQualityGatesConfidenceWithoutTemplateValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplateValidation = false
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(1.0, 10.0, 2.0, 1.0)
	result := q.Evaluate(peak, Match{NCC: 0}, true)
	require.True(t, result.Accepted)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestQualityGatesConfidenceIsClippedToUnitInterval(t *testing.T) {
	cfg := DefaultConfig()
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}

	peak := basicPeak(1.0, 100.0, 2.0, 1.0) // huge surplus, surplus/(3*sigma) saturates at 1
	result := q.Evaluate(peak, Match{NCC: 1.0}, true)
	require.True(t, result.Accepted)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestQualityGatesResetClearsRunAndEventHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ISIMs = 300
	q := NewQualityGates(cfg)
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}
	peak := basicPeak(1.0, 10.0, 2.0, 1.0)
	res1 := q.Evaluate(peak, Match{NCC: 0.9}, true)
	require.True(t, res1.Accepted)

	q.Reset()
	q.NoteStreamStart(0)
	for i := 0; i < 10; i++ {
		q.ObserveGyro(0, 0, 0)
	}
	// Same timestamp as the pre-reset peak should no longer trip the ISI
	// guard, since Reset discards the last-event bookkeeping.
	res2 := q.Evaluate(peak, Match{NCC: 0.5}, true)
	assert.True(t, res2.Accepted)
}
