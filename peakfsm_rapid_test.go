// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPeakFSMRefractoryPropertyHolds is a property check (spec.md §8,
// testable property 6: "at most one event within any refractory window")
// driven by rapid over randomly generated above/below-gate sample
// sequences, rather than the fixed two-impulse scenario covered in
// detector_test.go.
func TestPeakFSMRefractoryPropertyHolds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const refractoryS = 0.15
		fsm := NewPeakFSM(refractoryS)

		gate := 1.0
		n := rapid.IntRange(5, 200).Draw(rt, "n")
		dt := 0.02

		var confirmedTimes []float64
		t0 := 0.0
		for i := 0; i < n; i++ {
			z := rapid.Float64Range(0, 5).Draw(rt, "z")
			if c, ok := fsm.Step(z, gate, 1.0, t0); ok {
				confirmedTimes = append(confirmedTimes, c.TPeak)
			}
			t0 += dt
		}

		for i := 1; i < len(confirmedTimes); i++ {
			gap := confirmedTimes[i] - confirmedTimes[i-1]
			if gap < refractoryS {
				rt.Fatalf("two confirmed peaks %v and %v are only %v apart, under the refractory period %v",
					confirmedTimes[i-1], confirmedTimes[i], gap, refractoryS)
			}
		}
	})
}

// TestPeakFSMResetIsDeterministic is a property check (spec.md §8,
// testable property 4: reset determinism) verifying that replaying the
// same sample sequence after Reset reproduces the same confirmed peaks.
func TestPeakFSMResetIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const refractoryS = 0.15
		fsm := NewPeakFSM(refractoryS)

		n := rapid.IntRange(5, 100).Draw(rt, "n")
		zs := make([]float64, n)
		for i := range zs {
			zs[i] = rapid.Float64Range(0, 5).Draw(rt, "z")
		}

		run := func() []Confirmed {
			var out []Confirmed
			t0 := 0.0
			for _, z := range zs {
				if c, ok := fsm.Step(z, 1.0, 1.0, t0); ok {
					out = append(out, c)
				}
				t0 += 0.02
			}
			return out
		}

		first := run()
		fsm.Reset()
		second := run()

		if len(first) != len(second) {
			rt.Fatalf("replay after reset produced %d events, first run produced %d", len(second), len(first))
		}
		for i := range first {
			if first[i].TPeak != second[i].TPeak || first[i].Value != second[i].Value {
				rt.Fatalf("event %d differs after reset: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}
