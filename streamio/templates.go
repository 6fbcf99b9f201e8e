// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package streamio

import (
	"encoding/json"
	"fmt"
	"os"

	pinch "github.com/moussaba/dhikr-counter-sub000"
)

// jsonTemplate mirrors the wire format the core's external interfaces
// section specifies: a JSON array of objects with fs, preMs, postMs,
// vectorLength, data, channelsMeta and version fields. encoding/json is
// used directly since this is a flat array-of-objects shape no library in
// the retrieval pack improves on.
type jsonTemplate struct {
	FS           float64   `json:"fs"`
	PreMs        float64   `json:"preMs"`
	PostMs       float64   `json:"postMs"`
	VectorLength int       `json:"vectorLength"`
	Data         []float64 `json:"data"`
	ChannelsMeta string    `json:"channelsMeta"`
	Version      string    `json:"version"`
}

// LoadTemplateBundle reads a template bundle from a JSON file at path and
// converts it to the core's PinchTemplate slice. It does not validate the
// shared-vectorLength invariant itself; pinch.NewTemplateBank does that at
// detector construction time.
func LoadTemplateBundle(path string) ([]pinch.PinchTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("streamio: read template bundle %s: %w", path, err)
	}

	var entries []jsonTemplate
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("streamio: parse template bundle %s: %w", path, err)
	}

	out := make([]pinch.PinchTemplate, len(entries))
	for i, e := range entries {
		if len(e.Data) != e.VectorLength {
			return nil, fmt.Errorf("streamio: template %d: vectorLength %d but data has %d samples", i, e.VectorLength, len(e.Data))
		}
		out[i] = pinch.PinchTemplate{
			FS:      e.FS,
			PreMs:   e.PreMs,
			PostMs:  e.PostMs,
			Data:    e.Data,
			Channel: e.ChannelsMeta,
			Version: e.Version,
		}
	}
	return out, nil
}
