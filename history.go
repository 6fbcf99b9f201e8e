// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package pinch

// historySample is one retained (fused value, timestamp) pair.
type historySample struct {
	z float64
	t float64
}

// History is a fixed-capacity circular buffer of fused samples and their
// timestamps, sized so a full pre/post window around any confirmed peak is
// always retained with a safety margin. It allocates once, at
// construction, and never again.
type History struct {
	buf   []historySample
	head  int // index where the next sample will be written
	count int // number of valid samples currently held, <= len(buf)
}

// NewHistory builds a History with the given capacity (must be >= 1).
func NewHistory(capacity int) History {
	if capacity < 1 {
		capacity = 1
	}
	return History{buf: make([]historySample, capacity)}
}

// Append records one (z, t) sample, overwriting the oldest entry once the
// buffer is full.
func (h *History) Append(z, t float64) {
	h.buf[h.head] = historySample{z: z, t: t}
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Len returns the number of valid samples currently retained.
func (h *History) Len() int {
	return h.count
}

// Cap returns the buffer's fixed capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

// at returns the i-th oldest retained sample, 0 <= i < Len().
func (h *History) at(i int) historySample {
	start := (h.head - h.count + len(h.buf)) % len(h.buf)
	return h.buf[(start+i)%len(h.buf)]
}

// NearestIndex returns the index (in oldest-to-newest order, as used by
// at/Window) of the retained sample whose timestamp is closest to t.
func (h *History) NearestIndex(t float64) int {
	best := 0
	bestDiff := -1.0
	for i := 0; i < h.count; i++ {
		d := h.at(i).t - t
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return best
}

// Window extracts len(dst) samples centered on centerIdx (an index as
// returned by NearestIndex) into the caller-owned dst, padding with edge
// values when the window runs past either end of the retained history. It
// also reports the timestamps of the first and last samples of the window
// (edge-padded samples reuse the edge timestamp). dst is sized once by the
// caller (matching the matcher's fixed template length) so this never
// allocates on the hot path.
func (h *History) Window(centerIdx int, dst []float64) (tStart, tEnd float64) {
	length := len(dst)
	half := length / 2
	lo := centerIdx - half
	for i := 0; i < length; i++ {
		idx := lo + i
		if idx < 0 {
			idx = 0
		}
		if idx > h.count-1 {
			idx = h.count - 1
		}
		dst[i] = h.at(idx).z
	}

	firstIdx := lo
	if firstIdx < 0 {
		firstIdx = 0
	}
	if firstIdx > h.count-1 {
		firstIdx = h.count - 1
	}
	lastIdx := lo + length - 1
	if lastIdx < 0 {
		lastIdx = 0
	}
	if lastIdx > h.count-1 {
		lastIdx = h.count - 1
	}

	return h.at(firstIdx).t, h.at(lastIdx).t
}

// Reset empties the history without shrinking its capacity.
func (h *History) Reset() {
	h.head, h.count = 0, 0
}
