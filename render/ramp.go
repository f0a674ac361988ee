/*
NAME
  ramp.go

DESCRIPTION
  ramp.go implements spec.md §4.H's object sub-block ramp semantics:
  linearly interpolating each speaker's gain from the previous
  sub-block's target to the current one across the sub-block's sample
  span, mixing the result into the renderer's output buffers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import "github.com/ausocean/iab/vbap"

// gainMap is a sparse speaker-gain vector keyed by output channel
// index, the common currency between vbap.Engine's results and the
// ramp mixer.
type gainMap map[int]float64

func toGainMap(gains []vbap.SpeakerGain, scale float64) gainMap {
	m := make(gainMap, len(gains))
	for _, g := range gains {
		m[g.OutputIndex] = g.Gain * scale
	}
	return m
}

// rampMix interpolates from prev to curr across [start, start+length)
// of pcm (indexed absolutely into the frame) and accumulates into
// out, one row per output channel. Per spec.md §4.H's ramp semantics:
// s_i = i/(L-1) for i in 0..L-1, so the first sample equals prev's
// gain and the last equals curr's; L < 2 is the degenerate case and
// takes curr's gain throughout.
func rampMix(out [][]float64, prev, curr gainMap, pcm []float64, start, length int) {
	if length <= 0 {
		return
	}
	channels := make(map[int]bool, len(prev)+len(curr))
	for idx := range prev {
		channels[idx] = true
	}
	for idx := range curr {
		channels[idx] = true
	}

	for idx := range channels {
		ops.ramp(out[idx], pcm, start, length, prev[idx], curr[idx])
	}
}
