// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package streamio

import (
	pinch "github.com/moussaba/dhikr-counter-sub000"
)

// EventSink is a slice-backed collector a caller hands a Detector's
// returned events to, mirroring the core's "no callback is registered
// from inside the core" contract: the core never holds a reference to a
// sink, so the caller is responsible for forwarding events itself.
type EventSink struct {
	Events []pinch.PinchEvent
}

// Collect appends an event. A nil event (no detection this frame) is a
// no-op, so callers can pass Process's result through unconditionally.
func (s *EventSink) Collect(e *pinch.PinchEvent) {
	if e == nil {
		return
	}
	s.Events = append(s.Events, *e)
}

// Len returns the number of collected events.
func (s *EventSink) Len() int {
	return len(s.Events)
}
