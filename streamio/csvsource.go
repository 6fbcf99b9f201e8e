// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package streamio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	pinch "github.com/moussaba/dhikr-counter-sub000"
)

// CSVFrameSource replays a recorded six-axis stream from a CSV file, the
// way cmd/pinchsim's file-replay mode feeds a Detector offline. Columns
// are t,ax,ay,az,gx,gy,gz; a header row is accepted and skipped if its
// first field is not numeric. encoding/csv is used directly: no CSV
// library in the retrieval pack offers anything beyond the stdlib reader
// for this flat, fixed-column shape.
type CSVFrameSource struct {
	r       *csv.Reader
	f       *os.File
	done    bool
	pending []string
}

// OpenCSVFrameSource opens path and prepares to stream SensorFrame values
// from it. Call Close when done.
func OpenCSVFrameSource(path string) (*CSVFrameSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("streamio: open %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = 7

	src := &CSVFrameSource{r: r, f: f}
	if err := src.skipHeaderIfPresent(); err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// skipHeaderIfPresent reads the first row and, if it doesn't parse as a
// numeric timestamp, treats it as a header and discards it; otherwise the
// row is stashed as the first data row.
func (s *CSVFrameSource) skipHeaderIfPresent() error {
	rec, err := s.r.Read()
	if err == io.EOF {
		s.done = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("streamio: read csv header: %w", err)
	}
	if _, err := strconv.ParseFloat(rec[0], 64); err == nil {
		s.pending = rec
	}
	return nil
}

// Next returns the next frame, or io.EOF once the stream is exhausted.
func (s *CSVFrameSource) Next() (pinch.SensorFrame, error) {
	var rec []string
	if s.pending != nil {
		rec = s.pending
		s.pending = nil
	} else {
		if s.done {
			return pinch.SensorFrame{}, io.EOF
		}
		var err error
		rec, err = s.r.Read()
		if err == io.EOF {
			s.done = true
			return pinch.SensorFrame{}, io.EOF
		}
		if err != nil {
			return pinch.SensorFrame{}, fmt.Errorf("streamio: read csv row: %w", err)
		}
	}

	return parseFrameRow(rec)
}

func parseFrameRow(rec []string) (pinch.SensorFrame, error) {
	vals := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return pinch.SensorFrame{}, fmt.Errorf("streamio: csv field %d (%q): %w", i, field, err)
		}
		vals[i] = v
	}
	return pinch.SensorFrame{
		T:  vals[0],
		Ax: float32(vals[1]),
		Ay: float32(vals[2]),
		Az: float32(vals[3]),
		Gx: float32(vals[4]),
		Gy: float32(vals[5]),
		Gz: float32(vals[6]),
	}, nil
}

// Close releases the underlying file handle.
func (s *CSVFrameSource) Close() error {
	return s.f.Close()
}
