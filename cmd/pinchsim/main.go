// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// Command pinchsim wires a frame source, a configuration, a template
// bundle and an event sink through the pinch detector core and reports
// the events it emits. It mirrors the teacher's main.go: build every
// collaborator, run the pipeline to completion, report results.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	pinch "github.com/moussaba/dhikr-counter-sub000"
	"github.com/moussaba/dhikr-counter-sub000/streamio"
)

func main() {
	var (
		csvPath      = pflag.StringP("csv", "c", "", "Replay a recorded frame stream from this CSV file (t,ax,ay,az,gx,gy,gz). If unset, a synthetic single-bump demo stream is used.")
		configPath   = pflag.StringP("config", "C", "", "Load PinchConfig overrides from this YAML file. If unset, the balanced default config is used.")
		templatePath = pflag.StringP("templates", "t", "", "Load the template bundle from this JSON file. Required.")
		verbose      = pflag.BoolP("verbose", "v", false, "Log a line per emitted event and per rejected frame. Per-gate veto counts are logged at the end of every run.")
		help         = pflag.BoolP("help", "h", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "pinchsim: drive the pinch detector core over a recorded or synthetic stream.")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *templatePath == "" {
		logger.Fatal("missing required flag", "flag", "--templates")
	}

	templates, err := streamio.LoadTemplateBundle(*templatePath)
	if err != nil {
		logger.Fatal("loading template bundle", "err", err)
	}

	cfg := pinch.DefaultConfig()
	if *configPath != "" {
		cfg, err = streamio.LoadConfigInto(*configPath, cfg)
		if err != nil {
			logger.Fatal("loading config", "err", err)
		}
	}

	detector, err := pinch.NewDetector(cfg, templates)
	if err != nil {
		logger.Fatal("constructing detector", "err", err)
	}

	sink := &streamio.EventSink{}

	if *csvPath != "" {
		if err := runCSV(detector, sink, *csvPath, logger, *verbose); err != nil {
			logger.Fatal("replaying csv", "err", err)
		}
	} else {
		runSynthetic(detector, sink, logger, *verbose)
	}

	stats := detector.Stats()
	logger.Info("done",
		"frames", stats.FramesProcessed,
		"events", stats.EventsEmitted,
		"veto_bookend_start", stats.VetoBookendStart,
		"veto_bookend_end", stats.VetoBookendEnd,
		"veto_gyro_motion", stats.VetoGyroMotion,
		"veto_amplitude", stats.VetoAmplitude,
		"veto_isi", stats.VetoISI,
		"veto_width", stats.VetoWidth,
		"veto_ncc_threshold", stats.VetoNCCThreshold,
	)
}

func runCSV(d *pinch.Detector, sink *streamio.EventSink, path string, logger *log.Logger, verbose bool) error {
	src, err := streamio.OpenCSVFrameSource(path)
	if err != nil {
		return err
	}
	defer src.Close()

	for {
		frame, err := src.Next()
		if err != nil {
			break
		}
		event, perr := d.Process(frame)
		if perr != nil {
			if verbose {
				logger.Warn("rejected frame", "t", frame.T, "err", perr)
			}
			continue
		}
		sink.Collect(event)
		if verbose && event != nil {
			logger.Info("event", "t_peak", event.TPeak, "confidence", event.Confidence, "ncc", event.NCCScore)
		}
	}
	return nil
}

func runSynthetic(d *pinch.Detector, sink *streamio.EventSink, logger *log.Logger, verbose bool) {
	src := streamio.NewSyntheticSource(50, 10, []streamio.Bump{
		{CenterS: 5.0, WidthS: 0.1, AmpG: 0.4, Axis: "az"},
	})
	for {
		frame, ok := src.Next()
		if !ok {
			break
		}
		event, err := d.Process(frame)
		if err != nil {
			if verbose {
				logger.Warn("rejected frame", "t", frame.T, "err", err)
			}
			continue
		}
		sink.Collect(event)
		if verbose && event != nil {
			logger.Info("event", "t_peak", event.TPeak, "confidence", event.Confidence, "ncc", event.NCCScore)
		}
	}
}
