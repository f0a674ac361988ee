/*
NAME
  vbap.go

DESCRIPTION
  vbap.go implements spec.md §4.G's core VBAP gain computation: patch
  selection (with the largest-minimum-gain fallback), zone-gain
  attenuation, and energy-preserving normalisation.

  Grounded on codec/pcm/filters.go's explicit-derivation DSP style
  (named intermediate values, no hidden state) and gonum.org/v1/gonum/
  mat for the precomputed 3x3 patch-matrix inverse (renderconfig.Patch)
  already built at configuration time.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package vbap implements spec.md §4.G: Vector-Base Amplitude Panning
// over the triangular patches of a renderconfig.Config, plus the
// zone-gain, snap and spread extensions.
package vbap

import (
	"math"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/renderconfig"
	"gonum.org/v1/gonum/mat"
)

// SpeakerGain is one output speaker's computed pan gain.
type SpeakerGain struct {
	OutputIndex int
	Gain        float64
}

// Engine computes VBAP pan gains against a fixed renderer
// configuration. Engine holds no mutable state and is safe for
// concurrent use (spec.md §5: "configuration is immutable for the
// renderer's lifetime").
type Engine struct {
	cfg *renderconfig.Config
}

// New returns an Engine panning over cfg's speakers and patches.
func New(cfg *renderconfig.Config) *Engine {
	return &Engine{cfg: cfg}
}

// CubeToDirection maps an Object Sub-Block's unit-cube Position
// (spec.md §3: each axis in [0,1]) to a unit-sphere direction vector,
// by re-centring each axis to [-1,1] and normalising. A Position at
// the cube centre (0.5,0.5,0.5) maps to the zero vector, which no
// patch can cover; callers pan it via the largest-minimum-gain
// fallback like any other uncovered direction.
func CubeToDirection(p frame.Position) [3]float64 {
	d := [3]float64{2*p.X - 1, 2*p.Y - 1, 2*p.Z - 1}
	n := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if n == 0 {
		return d
	}
	return [3]float64{d[0] / n, d[1] / n, d[2] / n}
}

// Pan computes the patch gains for direction dir (a unit-sphere
// vector, e.g. from CubeToDirection), without zone or snap
// adjustment. It implements spec.md §4.G steps 1-3: the patch with
// the largest minimum raw gain is chosen unconditionally, which
// subsumes step 1's "all three gains non-negative" search (a patch
// that genuinely contains dir always has the largest minimum gain of
// any patch, and that minimum is itself non-negative) and step 2's
// fallback (when no patch contains dir, the same patch is the best
// available approximation); its negative components are then clamped
// to zero and the result is L2-normalised for energy-preserving pan.
func (e *Engine) Pan(dir [3]float64) ([]SpeakerGain, error) {
	if len(e.cfg.Patches) == 0 {
		return nil, iaberr.New(iaberr.KindNoVBAPPatch, "renderer configuration has no VBAP patches")
	}

	v := mat.NewVecDense(3, dir[:])

	var (
		bestIdx = -1
		bestMin = math.Inf(-1)
		bestG   [3]float64
	)
	for i, patch := range e.cfg.Patches {
		var g mat.VecDense
		g.MulVec(patch.Inverse, v)
		min := g.AtVec(0)
		if g.AtVec(1) < min {
			min = g.AtVec(1)
		}
		if g.AtVec(2) < min {
			min = g.AtVec(2)
		}
		// Strict > so the first patch wins ties (spec.md §4.G: "ties in
		// minimum-gain are broken by patch declaration order").
		if min > bestMin {
			bestMin = min
			bestIdx = i
			bestG = [3]float64{g.AtVec(0), g.AtVec(1), g.AtVec(2)}
		}
	}

	patch := e.cfg.Patches[bestIdx]
	gains := bestG
	for i := range gains {
		if gains[i] < 0 {
			gains[i] = 0
		}
	}

	norm := math.Sqrt(gains[0]*gains[0] + gains[1]*gains[1] + gains[2]*gains[2])
	if norm > 0 {
		gains[0] /= norm
		gains[1] /= norm
		gains[2] /= norm
	}

	speakers := [3]int{patch.S1, patch.S2, patch.S3}
	out := make([]SpeakerGain, 0, 3)
	for i, si := range speakers {
		s := e.cfg.Speakers[si]
		if !s.Physical() {
			continue
		}
		out = append(out, SpeakerGain{OutputIndex: s.OutputIndex, Gain: gains[i]})
	}
	return out, nil
}

// ApplyZoneGain attenuates each speaker gain in place by its zone's
// gain value (spec.md §4.G's zone gain extension), then re-normalises
// so the result stays energy-preserving. zoneOf maps a speaker's
// output index to its ZoneGain9 zone index.
func ApplyZoneGain(gains []SpeakerGain, zg frame.ZoneGain9, zoneOf func(outputIndex int) int) []SpeakerGain {
	if !zg.Enabled {
		return gains
	}
	out := make([]SpeakerGain, len(gains))
	var sumSq float64
	for i, sg := range gains {
		z := zoneOf(sg.OutputIndex)
		factor := 1.0
		if z >= 0 && z < len(zg.Zones) {
			factor = zg.Zones[z].Value()
		}
		g := sg.Gain * factor
		out[i] = SpeakerGain{OutputIndex: sg.OutputIndex, Gain: g}
		sumSq += g * g
	}
	if sumSq == 0 {
		return out
	}
	norm := math.Sqrt(sumSq)
	for i := range out {
		out[i].Gain /= norm
	}
	return out
}
