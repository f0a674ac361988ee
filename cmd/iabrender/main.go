/*
NAME
  main.go

DESCRIPTION
  Iabrender is a bare bones program that parses a single ST 2098-2
  IAB frame file, renders it against a renderer configuration file
  (hot-reloaded on change), and writes the rendered channels out as
  raw interleaved float64 samples. It exists to wire iabcodec, dlc,
  render, rendermt and renderconfig together in one program; it does
  not write a
  WAV file (see DESIGN.md on why that stays out of scope).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements iabrender, a command-line IAB frame
// renderer.
package main

import (
	"encoding/binary"
	"flag"
	"math"
	"os"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iabcodec"
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/internal/obslog"
	"github.com/ausocean/iab/render"
	"github.com/ausocean/iab/rendermt"
	"github.com/ausocean/iab/renderconfig"
	"github.com/ausocean/utils/logging"
)

// Logging related constants, matching cmd/looper/main.go's pattern.
const (
	logPath      = "/var/log/iabrender/iabrender.log"
	logVerbosity = logging.Debug
	logSuppress  = true
)

func main() {
	framePtr := flag.String("frame", "", "Path to a single ST 2098-2 IAB frame file.")
	configPtr := flag.String("config", "", "Path to a renderer configuration file.")
	outPtr := flag.String("out", "", "Path to write rendered float64 samples to (interleaved, little-endian).")
	poolPtr := flag.Int("pool", 0, "Worker pool size for the multi-threaded renderer (0 renders single-threaded).")
	flag.Parse()

	l := obslog.New(obslog.Config{
		Path:      logPath,
		Verbosity: logVerbosity,
		Suppress:  logSuppress,
	})

	cfg, watcher, err := renderconfig.NewWatcher(*configPtr, l)
	if err != nil {
		l.Fatal("could not load renderer configuration", "error", err.Error())
	}
	defer watcher.Close()

	frameBytes, err := os.ReadFile(*framePtr)
	if err != nil {
		l.Fatal("could not read frame file", "error", err.Error())
	}

	codec := iabcodec.NewCodec(l)
	f, warnings, err := codec.Parse(frameBytes)
	if err != nil {
		l.Fatal("could not parse frame", "error", err.Error())
	}
	l.Debug("parsed frame", "warnings", warnings.Total())

	out, renderWarnings, err := renderFrame(cfg, *poolPtr, l, f)
	if err != nil {
		l.Fatal("could not render frame", "error", err.Error())
	}
	l.Debug("rendered frame", "warnings", renderWarnings.Total())

	if *outPtr == "" {
		return
	}
	if err := writeSamples(*outPtr, out); err != nil {
		l.Fatal("could not write output", "error", err.Error())
	}
}

// renderFrame renders f using the single-threaded pipeline when pool
// is 0, or the pool-sized MT scheduler otherwise.
func renderFrame(cfg *renderconfig.Config, pool int, l logging.Logger, f *frame.Frame) (*render.Output, *iaberr.Warnings, error) {
	if pool <= 0 {
		return render.NewPipeline(cfg, l).RenderFrame(f)
	}
	sched := rendermt.NewScheduler(cfg, pool, l)
	defer sched.Close()
	return sched.RenderFrame(f)
}

// writeSamples writes out's channels interleaved as little-endian
// float64 samples, frame-major (all channels for sample 0, then
// sample 1, ...).
func writeSamples(path string, out *render.Output) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	buf := make([]byte, 8)
	for i := 0; i < out.SampleCount; i++ {
		for ch := range out.Channels {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(out.Channels[ch][i]))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}
