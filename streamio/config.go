// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// Package streamio provides the external collaborators the pinch detector
// core depends on only through boundary contracts: a YAML configuration
// loader, a JSON template-bundle loader, a CSV frame source for offline
// replay, and a slice-backed event sink. None of this is part of the
// detection core; it exists so cmd/pinchsim and tests have somewhere to
// get frames, config and templates from.
package streamio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	pinch "github.com/moussaba/dhikr-counter-sub000"
)

// yamlConfig mirrors pinch.PinchConfig with yaml tags; the core struct
// itself carries no serialization tags since it has no opinion on file
// formats.
type yamlConfig struct {
	FS                 float64 `yaml:"fs"`
	LowHz              float64 `yaml:"low_hz"`
	HighHz             float64 `yaml:"high_hz"`
	WA                 float64 `yaml:"w_a"`
	WG                 float64 `yaml:"w_g"`
	MADWinS            float64 `yaml:"mad_win_s"`
	KGate              float64 `yaml:"k_gate"`
	RefractoryMs       float64 `yaml:"refractory_ms"`
	NCCThresh          float64 `yaml:"ncc_thresh"`
	IgnoreStartMs      float64 `yaml:"ignore_start_ms"`
	IgnoreEndMs        float64 `yaml:"ignore_end_ms"`
	GyroVetoRadS       float64 `yaml:"gyro_veto_rad_s"`
	GyroHoldMs         float64 `yaml:"gyro_hold_ms"`
	AmpSurplusSigma    float64 `yaml:"amp_surplus_sigma"`
	ISIMs              float64 `yaml:"isi_ms"`
	MinWidthMs         float64 `yaml:"min_width_ms"`
	MaxWidthMs         float64 `yaml:"max_width_ms"`
	TemplateValidation bool    `yaml:"template_validation"`
}

// LoadConfig reads a PinchConfig from a YAML file at path, overlaid onto
// pinch.DefaultConfig: fields absent from the file keep their "balanced"
// preset value. Use LoadConfigInto to overlay onto a different base.
func LoadConfig(path string) (pinch.PinchConfig, error) {
	return LoadConfigInto(path, pinch.DefaultConfig())
}

// LoadConfigInto reads a YAML file at path and overlays it onto base,
// returning the merged config. This lets a caller start from
// pinch.DefaultConfig and override only the fields a settings file sets.
func LoadConfigInto(path string, base pinch.PinchConfig) (pinch.PinchConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return pinch.PinchConfig{}, fmt.Errorf("streamio: read config %s: %w", path, err)
	}

	y := configToYAML(base)
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return pinch.PinchConfig{}, fmt.Errorf("streamio: parse config %s: %w", path, err)
	}

	return yamlToConfig(y), nil
}

func configToYAML(c pinch.PinchConfig) yamlConfig {
	return yamlConfig{
		FS:                 c.FS,
		LowHz:              c.LowHz,
		HighHz:             c.HighHz,
		WA:                 c.WA,
		WG:                 c.WG,
		MADWinS:            c.MADWinS,
		KGate:              c.KGate,
		RefractoryMs:       c.RefractoryMs,
		NCCThresh:          c.NCCThresh,
		IgnoreStartMs:      c.IgnoreStartMs,
		IgnoreEndMs:        c.IgnoreEndMs,
		GyroVetoRadS:       c.GyroVetoRadS,
		GyroHoldMs:         c.GyroHoldMs,
		AmpSurplusSigma:    c.AmpSurplusSigma,
		ISIMs:              c.ISIMs,
		MinWidthMs:         c.MinWidthMs,
		MaxWidthMs:         c.MaxWidthMs,
		TemplateValidation: c.TemplateValidation,
	}
}

func yamlToConfig(y yamlConfig) pinch.PinchConfig {
	return pinch.PinchConfig{
		FS:                 y.FS,
		LowHz:              y.LowHz,
		HighHz:             y.HighHz,
		WA:                 y.WA,
		WG:                 y.WG,
		MADWinS:            y.MADWinS,
		KGate:              y.KGate,
		RefractoryMs:       y.RefractoryMs,
		NCCThresh:          y.NCCThresh,
		IgnoreStartMs:      y.IgnoreStartMs,
		IgnoreEndMs:        y.IgnoreEndMs,
		GyroVetoRadS:       y.GyroVetoRadS,
		GyroHoldMs:         y.GyroHoldMs,
		AmpSurplusSigma:    y.AmpSurplusSigma,
		ISIMs:              y.ISIMs,
		MinWidthMs:         y.MinWidthMs,
		MaxWidthMs:         y.MaxWidthMs,
		TemplateValidation: y.TemplateValidation,
	}
}
