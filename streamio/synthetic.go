// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package streamio

import (
	"math"

	pinch "github.com/moussaba/dhikr-counter-sub000"
)

// Bump describes a unit triangular amplitude bump to inject onto one axis
// of an otherwise quiet synthetic stream, for exercising the detector the
// way cmd/pinchsim's demo mode and the end-to-end test scenarios do.
type Bump struct {
	CenterS float64
	WidthS  float64
	AmpG    float64
	Axis    string // one of "ax","ay","az","gx","gy","gz"
}

// SyntheticSource generates a fixed-duration, fixed-rate stream of mostly
// quiet SensorFrame values with a configured set of triangular bumps
// injected, in the spirit of the teacher's Sim driving a scripted Flows
// schedule one virtual tick at a time rather than from live hardware.
type SyntheticSource struct {
	fs    float64
	n     int
	i     int
	bumps []Bump
}

// NewSyntheticSource builds a source producing durationS seconds of
// samples at fs Hz, with the given bumps injected additively.
func NewSyntheticSource(fs, durationS float64, bumps []Bump) *SyntheticSource {
	return &SyntheticSource{
		fs:    fs,
		n:     int(math.Round(durationS * fs)),
		bumps: bumps,
	}
}

// Next returns the next synthetic frame, or false once the configured
// duration has been produced.
func (s *SyntheticSource) Next() (pinch.SensorFrame, bool) {
	if s.i >= s.n {
		return pinch.SensorFrame{}, false
	}
	t := float64(s.i) / s.fs
	s.i++

	f := pinch.SensorFrame{T: t}
	for _, b := range s.bumps {
		v := triangularBump(t, b.CenterS, b.WidthS, b.AmpG)
		if v == 0 {
			continue
		}
		switch b.Axis {
		case "ax":
			f.Ax += float32(v)
		case "ay":
			f.Ay += float32(v)
		case "az":
			f.Az += float32(v)
		case "gx":
			f.Gx += float32(v)
		case "gy":
			f.Gy += float32(v)
		case "gz":
			f.Gz += float32(v)
		}
	}
	return f, true
}

// triangularBump returns a unit triangular pulse of the given width
// centered at centerS, linearly ramping up to amp at the center and back
// down to 0 at the edges, 0 outside [centerS-width/2, centerS+width/2].
func triangularBump(t, centerS, widthS, amp float64) float64 {
	half := widthS / 2
	d := t - centerS
	if d < -half || d > half {
		return 0
	}
	return amp * (1 - math.Abs(d)/half)
}
