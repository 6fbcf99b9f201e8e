// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Fusion combines the band-passed, TKEO'd accel and gyro triads into one
// scalar activity score per frame: the weighted sum of each triad's L2
// magnitude, z = w_a*||TKEO(a)|| + w_g*||TKEO(g)||.
type Fusion struct {
	wa, wg float64

	accel [3]float64
	gyro  [3]float64
}

// NewFusion builds a Fusion with the given accel/gyro weights.
func NewFusion(wa, wg float64) Fusion {
	return Fusion{wa: wa, wg: wg}
}

// Combine fuses one frame's three accel-axis and three gyro-axis TKEO
// energies into the activity scalar z.
func (f *Fusion) Combine(ax, ay, az, gx, gy, gz float64) float64 {
	f.accel[0], f.accel[1], f.accel[2] = ax, ay, az
	f.gyro[0], f.gyro[1], f.gyro[2] = gx, gy, gz

	ma := triadL2(f.accel[:])
	mg := triadL2(f.gyro[:])

	return f.wa*ma + f.wg*mg
}

// triadL2 returns the Euclidean norm of a fixed three-element triad using
// gonum's Dot, rather than a hand-rolled sum of squares.
func triadL2(v []float64) float64 {
	d := floats.Dot(v, v)
	if d < 0 {
		d = 0
	}
	return math.Sqrt(d)
}
