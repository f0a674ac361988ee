/*
NAME
  snap.go

DESCRIPTION
  snap.go implements spec.md §4.G's snap extension: hard-routing an
  object to its nearest configured speaker when within tolerance,
  regardless of the VBAP patch output.

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
	"github.com/ausocean/iab/renderconfig"
)

// snapToleranceMaxRad is the widest arc, in radians, a 12-bit tolerance
// code can express (code 4095). spec.md leaves the exact mapping
// unspecified beyond "mapped from 12-bit code to a spherical arc
// length"; a quarter-turn ceiling keeps a saturated tolerance code
// from snapping every direction to the nearest speaker.
const (
	snapToleranceCodeMax = 4095
	snapToleranceMaxRad  = math.Pi / 2
)

// ToleranceRadians converts a Snap's 12-bit wire tolerance code to an
// angular distance in radians.
func ToleranceRadians(code uint16) float64 {
	if code > snapToleranceCodeMax {
		code = snapToleranceCodeMax
	}
	return float64(code) / snapToleranceCodeMax * snapToleranceMaxRad
}

// Snap returns the nearest physical speaker to dir and true if snap
// is present, carries a tolerance, and that speaker's angular
// distance from dir is within it. Callers route the object to that
// speaker at unit gain and skip Pan entirely for the sub-block.
func (e *Engine) Snap(dir [3]float64, snap frame.Snap) (SpeakerGain, bool) {
	if !snap.Present || !snap.ToleranceExists {
		return SpeakerGain{}, false
	}
	tol := ToleranceRadians(snap.Tolerance)

	var (
		found   bool
		best    float64
		nearest renderconfig.Speaker
	)
	for _, s := range e.cfg.PhysicalSpeakers {
		dot := dir[0]*s.Position[0] + dir[1]*s.Position[1] + dir[2]*s.Position[2]
		// dir and s.Position need not be unit length (dir may be the
		// cube-centre zero vector); normalise the dot product by both
		// magnitudes to get a valid cosine.
		dn := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])
		sn := math.Sqrt(s.Position[0]*s.Position[0] + s.Position[1]*s.Position[1] + s.Position[2]*s.Position[2])
		if dn == 0 || sn == 0 {
			continue
		}
		cos := dot / (dn * sn)
		if cos > 1 {
			cos = 1
		}
		if cos < -1 {
			cos = -1
		}
		angle := math.Acos(cos)
		if !found || angle < best {
			found = true
			best = angle
			nearest = s
		}
	}
	if !found || best > tol {
		return SpeakerGain{}, false
	}
	return SpeakerGain{OutputIndex: nearest.OutputIndex, Gain: 1.0}, true
}
