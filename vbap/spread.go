/*
NAME
  spread.go

DESCRIPTION
  spread.go implements spec.md §4.G's spread extension: softening a
  point-source pan by mixing it with a broader distribution, using a
  raised-cosine (Hann-shaped) mix ratio so the endpoint conditions
  (0 = pure VBAP, 1 = isotropic) are met with a continuous derivative
  rather than a bare linear ramp.

  Grounded on codec/pcm/filters.go's use of github.com/mjibson/go-dsp/
  window for window-shaped coefficient generation; here the window
  supplies the mix-ratio curve instead of a filter's tap weights.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package vbap

import (
	"math"

	"github.com/ausocean/iab/frame"
	"github.com/mjibson/go-dsp/window"
)

// spreadTableSize is the resolution of the sampled mix-ratio curve.
const spreadTableSize = 512

// spreadTable holds the rising half of a Hann window: monotone 0->1
// with zero slope at both endpoints.
var spreadTable = computeSpreadTable()

func computeSpreadTable() []float64 {
	full := window.Hann(2*spreadTableSize - 1)
	return full[:spreadTableSize]
}

// spreadMix maps t in [0,1] to its raised-cosine mix ratio, also in
// [0,1], via linear interpolation between sampled table points.
func spreadMix(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	idx := t * float64(len(spreadTable)-1)
	i0 := int(idx)
	i1 := i0 + 1
	if i1 >= len(spreadTable) {
		return spreadTable[len(spreadTable)-1]
	}
	frac := idx - float64(i0)
	return spreadTable[i0]*(1-frac) + spreadTable[i1]*frac
}

// ringBandDeg is how close (in elevation) a speaker must be to an
// object's elevation to join its 1-D spread ring.
const ringBandDeg = 15.0

// SpreadAmount reduces a Spread's 1 or 3 normalised values to the
// single mix-ratio input spreadMix expects; 3-D spread averages its
// three axis values, a defensible reduction absent a specified
// ellipsoid-mixing formula (spec.md §9 leaves the numeric curve
// unspecified beyond the endpoint conditions). Exported so callers can
// decide whether spreading applies at all before calling ApplySpread.
func SpreadAmount(s frame.Spread) float64 {
	n := s.Mode.NumValues()
	var sum float64
	for i := 0; i < n; i++ {
		sum += s.Values[i]
	}
	return sum / float64(n)
}

// ApplySpread mixes a point-source pan (gains) with an isotropic
// distribution over ring, weighted by spread's mix ratio. ring is the
// (possibly speaker-filtered) set of physical output indices the
// point source spreads into: the object's elevation ring for 1-D
// modes, all physical speakers for 3-D. Equal-power isotropic weights
// (1/sqrt(len(ring))) are blended with the point-source gains and the
// combined vector is re-normalised to unit energy.
func ApplySpread(gains []SpeakerGain, spread frame.Spread, ring []int) []SpeakerGain {
	mix := spreadMix(SpreadAmount(spread))
	if mix <= 0 || len(ring) == 0 {
		return gains
	}

	merged := make(map[int]float64, len(gains)+len(ring))
	for _, g := range gains {
		merged[g.OutputIndex] += (1 - mix) * g.Gain
	}
	isoGain := mix / math.Sqrt(float64(len(ring)))
	for _, idx := range ring {
		merged[idx] += isoGain
	}

	out := make([]SpeakerGain, 0, len(merged))
	var sumSq float64
	for idx, g := range merged {
		out = append(out, SpeakerGain{OutputIndex: idx, Gain: g})
		sumSq += g * g
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range out {
			out[i].Gain /= norm
		}
	}
	return out
}

// ElevationRing returns the physical speakers' output indices within
// ringBandDeg of elevationDeg, for use as ApplySpread's 1-D ring.
func (e *Engine) ElevationRing(elevationDeg float64) []int {
	var ring []int
	for _, s := range e.cfg.PhysicalSpeakers {
		if math.Abs(s.Elevation-elevationDeg) <= ringBandDeg {
			ring = append(ring, s.OutputIndex)
		}
	}
	return ring
}

// AllPhysical returns every physical speaker's output index, for use
// as ApplySpread's 3-D ring.
func (e *Engine) AllPhysical() []int {
	ring := make([]int, len(e.cfg.PhysicalSpeakers))
	for i, s := range e.cfg.PhysicalSpeakers {
		ring[i] = s.OutputIndex
	}
	return ring
}
