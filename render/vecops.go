/*
NAME
  vecops.go

DESCRIPTION
  vecops.go isolates this package's per-sample vector arithmetic
  (scale, accumulate, linear ramp) behind a small interface, the seam
  original_source/src/lib/coreutils' VectDSP / VectDSPMacAccelerate
  pair calls for: a portable scalar path with room for a platform-
  accelerated implementation behind a build tag, in the style of
  cmd/rv/probe.go's "+build withcv" gating. No Go vector-math
  accelerator exists in this module's dependency surface, so only the
  scalar implementation is built; the interface keeps that door open
  without speculative code behind it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

// vecops is the per-sample arithmetic this package needs for mixing:
// scaling a signal by a constant gain, accumulating one buffer into
// another, and linearly ramping a gain across a span while
// accumulating the result.
type vecops interface {
	scale(dst []float64, src []float64, gain float64)
	add(dst []float64, src []float64)
	ramp(dst []float64, src []float64, start, length int, prevGain, currGain float64)
}

// ops is the package-wide vecops implementation. It is a scalar pure-
// Go implementation; see the package doc comment for why no
// accelerated alternative is wired in.
var ops vecops = scalarOps{}

type scalarOps struct{}

func (scalarOps) scale(dst, src []float64, gain float64) {
	for i, v := range src {
		dst[i] = v * gain
	}
}

func (scalarOps) add(dst, src []float64) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] += src[i]
	}
}

func (scalarOps) ramp(dst, src []float64, start, length int, prevGain, currGain float64) {
	if length <= 0 {
		return
	}
	if length < 2 {
		n := start
		if n < len(src) && n < len(dst) {
			dst[n] += currGain * src[n]
		}
		return
	}
	for i := 0; i < length; i++ {
		n := start + i
		if n >= len(src) || n >= len(dst) {
			break
		}
		s := float64(i) / float64(length-1)
		g := prevGain*(1-s) + currGain*s
		dst[n] += g * src[n]
	}
}
