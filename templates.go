// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import "math"

// templateScales are the time-warp factors the bank pre-expands every
// input template across, so the hot path never resamples.
var templateScales = [3]float64{0.95, 1.00, 1.05}

// expandedTemplate is one pre-computed, zero-mean-normalized, fixed-length
// entry in the bank: a source template resampled to exactly L samples at
// one warp scale.
type expandedTemplate struct {
	sourceIdx int
	scale     float64
	length    int
	data      []float64 // zero-mean
	norm      float64   // sqrt(sum((data-mean)^2)), precomputed once
}

// TemplateBank holds every input template pre-expanded across every warp
// scale, so NCC matching in the hot path performs only fixed-size dot
// products. It is built once at detector construction and never mutated.
type TemplateBank struct {
	length  int
	entries []expandedTemplate
}

// NewTemplateBank validates a template bundle and pre-expands it across
// templateScales. All templates must share the same vector length.
func NewTemplateBank(templates []PinchTemplate) (TemplateBank, error) {
	if len(templates) == 0 {
		return TemplateBank{}, ErrTemplateBundleEmpty
	}
	l := templates[0].Len()
	for _, t := range templates {
		if t.Len() != l {
			return TemplateBank{}, ErrTemplateBundleLengthMismatch
		}
	}
	if l == 0 {
		return TemplateBank{}, ErrTemplateBundleEmpty
	}

	bank := TemplateBank{length: l}
	for srcIdx, t := range templates {
		for _, scale := range templateScales {
			resampled := resampleLinear(t.Data, l, scale)
			zm, norm := zeroMeanAndNorm(resampled)
			bank.entries = append(bank.entries, expandedTemplate{
				sourceIdx: srcIdx,
				scale:     scale,
				length:    l,
				data:      zm,
				norm:      norm,
			})
		}
	}
	return bank, nil
}

// Length returns the fixed vector length every entry (and hot-path window)
// shares.
func (b *TemplateBank) Length() int {
	return b.length
}

// resampleLinear reads src at a rate of srcLast/(virtualLen-1) source
// samples per output step, where virtualLen = max(2, round(L*scale)) is
// the warped template's virtual length. scale<1 shrinks virtualLen,
// advancing through src faster than the identity rate so the whole
// source is consumed in fewer output samples (time-compressed) and the
// remaining output samples clamp to the last source value; scale>1 grows
// virtualLen, advancing slower so src is stretched across more output
// samples than it has of its own. It always produces exactly L output
// samples via linear interpolation with clamped endpoints.
func resampleLinear(src []float64, l int, scale float64) []float64 {
	virtualLen := int(math.Round(float64(l) * scale))
	if virtualLen < 2 {
		virtualLen = 2
	}
	srcLast := len(src) - 1
	rate := float64(srcLast) / float64(virtualLen-1)

	out := make([]float64, l)
	for i := 0; i < l; i++ {
		srcPos := float64(i) * rate
		if srcPos < 0 {
			srcPos = 0
		}
		if srcPos > float64(srcLast) {
			srcPos = float64(srcLast)
		}

		lo := int(math.Floor(srcPos))
		if lo < 0 {
			lo = 0
		}
		if lo > srcLast {
			lo = srcLast
		}
		hi := lo + 1
		if hi > srcLast {
			hi = srcLast
		}
		frac := srcPos - float64(lo)
		out[i] = src[lo]*(1-frac) + src[hi]*frac
	}
	return out
}

// zeroMeanAndNorm returns a fresh zero-mean copy of v along with its L2
// norm; v itself is not modified.
func zeroMeanAndNorm(v []float64) ([]float64, float64) {
	var sum float64
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))

	out := make([]float64, len(v))
	var ss float64
	for i, x := range v {
		d := x - mean
		out[i] = d
		ss += d * d
	}
	return out, math.Sqrt(ss)
}
