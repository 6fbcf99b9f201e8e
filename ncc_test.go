// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNCCShiftInvarianceScalePlusConstant checks testable property 5: for
// any template and any window that is a scalar-positive multiple of the
// template plus a constant, NCC = 1.
func TestNCCShiftInvarianceScalePlusConstant(t *testing.T) {
	template := []float64{0, 1, 3, 6, 3, 1, 0}

	bank, err := NewTemplateBank([]PinchTemplate{{Data: append([]float64{}, template...)}})
	require.NoError(t, err)

	hist := NewHistory(len(template) + 4)
	const scale = 2.5
	const offset = 10.0
	baseT := 0.0
	for i, v := range template {
		hist.Append(scale*v+offset, baseT+float64(i)*0.02)
	}

	m := NewMatcher(&bank)
	peakIdx := hist.NearestIndex(baseT + float64(len(template)/2)*0.02)
	match := m.Best(&hist, peakIdx)

	assert.InDelta(t, 1.0, match.NCC, 1e-6, "a positive scalar multiple plus a constant should score NCC=1")
}

func TestNCCDenominatorGuard(t *testing.T) {
	flat := make([]float64, 7)
	bank, err := NewTemplateBank([]PinchTemplate{{Data: []float64{0, 1, 3, 6, 3, 1, 0}}})
	require.NoError(t, err)

	hist := NewHistory(10)
	for i := range flat {
		hist.Append(5.0, float64(i)*0.02)
	}

	m := NewMatcher(&bank)
	match := m.Best(&hist, hist.NearestIndex(0.06))
	assert.Equal(t, 0.0, match.NCC, "a constant (zero-variance) window should score NCC=0, not NaN")
}

func TestTemplateBankRejectsEmptyBundle(t *testing.T) {
	_, err := NewTemplateBank(nil)
	assert.ErrorIs(t, err, ErrTemplateBundleEmpty)
}

func TestTemplateBankRejectsLengthMismatch(t *testing.T) {
	_, err := NewTemplateBank([]PinchTemplate{
		{Data: []float64{0, 1, 0}},
		{Data: []float64{0, 1, 2, 0}},
	})
	assert.ErrorIs(t, err, ErrTemplateBundleLengthMismatch)
}
