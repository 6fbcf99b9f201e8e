// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

// DetectorStats is a cheap, read-only snapshot of a Detector's running
// counters, returned by value so callers can surface a status line without
// the core taking on any UI or plotting responsibility.
type DetectorStats struct {
	FramesProcessed uint64
	EventsEmitted   uint64

	VetoBookendStart uint64
	VetoBookendEnd   uint64
	VetoGyroMotion   uint64
	VetoAmplitude    uint64
	VetoISI          uint64
	VetoWidth        uint64
	VetoNCCThreshold uint64

	Baseline float64
	Sigma    float64
}

func (s *DetectorStats) noteVeto(reason string) {
	switch reason {
	case "bookend_start":
		s.VetoBookendStart++
	case "bookend_end":
		s.VetoBookendEnd++
	case "gyro_motion":
		s.VetoGyroMotion++
	case "amplitude_surplus":
		s.VetoAmplitude++
	case "isi":
		s.VetoISI++
	case "width":
		s.VetoWidth++
	case "ncc_threshold":
		s.VetoNCCThreshold++
	}
}

// Stats returns a snapshot of the detector's running counters.
func (d *Detector) Stats() DetectorStats {
	return d.stats
}
