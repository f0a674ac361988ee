/*
NAME
  scheduler.go

DESCRIPTION
  scheduler.go implements spec.md §4.I's optional multi-threaded
  renderer: a fixed-size worker pool fed by a per-frame decode queue
  and render queue, joined by a counted latch so render tasks never
  start before their inputs are decoded, with results reduced in a
  fixed beds-then-objects order so the summed output is bit-identical
  to render.Pipeline's single-threaded result (spec.md §8 property 10
  / §4.I "Ordering guarantees").

  Grounded on revid.go's own concurrency idiom: a sync.WaitGroup join
  per stage, rather than a third-party
  worker-pool library (ausocean/utils/pool is a network ring buffer
  for byte chunks, not a goroutine task pool, and has no home here;
  see DESIGN.md).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rendermt implements spec.md §4.I: a fixed-size thread pool
// variant of package render's pipeline, guaranteed to produce output
// bit-identical to the single-threaded renderer regardless of pool
// size.
package rendermt

import (
	"runtime"
	"sync"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/render"
	"github.com/ausocean/iab/renderconfig"
	"github.com/ausocean/utils/logging"
)

// DefaultPoolSize is used when NewScheduler is given a non-positive
// size (spec.md §4.I: "default size = 4 or hardware parallelism").
func DefaultPoolSize() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 4
}

// task is one unit of submitted work: run it, nothing more. Workers
// are stateless; every task closes over its own inputs/outputs.
type task func()

// Scheduler is a fixed-size worker pool, created once and reused
// across frames (spec.md §5: "the pool itself outlives frames").
type Scheduler struct {
	pipeline *render.Pipeline
	tasks    chan task
	wg       sync.WaitGroup

	Logger logging.Logger
}

// NewScheduler starts size workers (DefaultPoolSize() if size <= 0)
// over pipeline's configuration.
func NewScheduler(cfg *renderconfig.Config, size int, logger logging.Logger) *Scheduler {
	if size <= 0 {
		size = DefaultPoolSize()
	}
	s := &Scheduler{
		pipeline: render.NewPipeline(cfg, logger),
		tasks:    make(chan task),
		Logger:   logger,
	}
	for i := 0; i < size; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for t := range s.tasks {
		t()
	}
}

// Close stops every worker. Outstanding frames must complete before
// calling Close; Close does not cancel in-flight work.
func (s *Scheduler) Close() {
	close(s.tasks)
	s.wg.Wait()
}

// RenderFrame renders f using the pool: one decode task per audio
// element (joined by a counted latch before any render task starts),
// then one render task per Bed Definition / Object Definition, with
// results reduced into the output beds first, then objects, each group
// in frame order — the fixed
// order spec.md §4.I requires for bit-identical output regardless of
// pool size.
func (s *Scheduler) RenderFrame(f *frame.Frame) (*render.Output, *iaberr.Warnings, error) {
	warnings := &iaberr.Warnings{}
	sampleCount := frame.SampleCount(s.pipeline.OutputSampleRate, f.FrameRate)

	pcm := s.decodeAll(f, sampleCount, warnings)

	// Jobs are ordered beds-then-objects, each group in wire order,
	// matching render.Pipeline.RenderFrame's own traversal
	// (f.Beds() fully before f.Objects()) exactly: floating-point
	// addition is not associative, so the reduction below must visit
	// jobs in the same order the single-threaded pipeline accumulates
	// them for the two to be bit-identical.
	type job struct {
		kind int // 0 = bed, 1 = object
		bed  *frame.BedDefinition
		obj  *frame.ObjectDefinition
	}
	var jobs []job
	for _, b := range f.Beds() {
		jobs = append(jobs, job{kind: 0, bed: b})
	}
	for _, o := range f.Objects() {
		jobs = append(jobs, job{kind: 1, obj: o})
	}

	numPhysical := len(s.pipeline.Config().PhysicalSpeakers)
	scratches := make([]*render.Output, len(jobs))
	for i := range scratches {
		scratches[i] = newScratch(numPhysical, sampleCount)
	}
	jobWarnings := make([]*iaberr.Warnings, len(jobs))

	var latch sync.WaitGroup
	latch.Add(len(jobs))
	for i, j := range jobs {
		i, j := i, j
		jobWarnings[i] = &iaberr.Warnings{}
		s.tasks <- func() {
			defer latch.Done()
			if j.kind == 0 {
				s.pipeline.RenderBedInto(j.bed, pcm, scratches[i], jobWarnings[i])
			} else {
				s.pipeline.RenderObjectInto(j.obj, pcm, scratches[i], jobWarnings[i])
			}
		}
	}
	latch.Wait()

	out := newScratch(numPhysical, sampleCount)
	for i := range scratches {
		reduceInto(out, scratches[i])
		warnings.Merge(jobWarnings[i])
	}

	s.pipeline.ApplyTrailingDownmix(out)

	return out, warnings, nil
}

// decodeAll runs one decode task per audio element, joined before
// returning (spec.md §4.I's "decode queue" stage).
func (s *Scheduler) decodeAll(f *frame.Frame, sampleCount int, warnings *iaberr.Warnings) map[uint32][]float64 {
	var elems []frame.Element
	for _, e := range f.Elements {
		switch e.(type) {
		case frame.AudioDataDLC, *frame.AudioDataDLC, frame.AudioDataPCM, *frame.AudioDataPCM:
			elems = append(elems, e)
		}
	}

	results := make([]render.DecodeResult, len(elems))
	var latch sync.WaitGroup
	latch.Add(len(elems))
	for i, e := range elems {
		i, e := i, e
		s.tasks <- func() {
			defer latch.Done()
			results[i] = s.pipeline.DecodeElement(e, sampleCount, warnings)
		}
	}
	latch.Wait()

	pcm := make(map[uint32][]float64, len(results))
	for _, r := range results {
		if r.OK {
			pcm[r.ID] = r.Signal
		}
	}
	return pcm
}

func newScratch(numChannels, sampleCount int) *render.Output {
	out := &render.Output{
		Channels:    make([][]float64, numChannels),
		SampleCount: sampleCount,
	}
	for i := range out.Channels {
		out.Channels[i] = make([]float64, sampleCount)
	}
	return out
}

// reduceInto adds src's channels into dst, the fixed-order summation
// step spec.md §4.I requires for determinism (callers invoke this in
// RenderFrame's job order, never concurrently).
func reduceInto(dst, src *render.Output) {
	for ch := range dst.Channels {
		d, s := dst.Channels[ch], src.Channels[ch]
		for i := range d {
			d[i] += s[i]
		}
	}
}
