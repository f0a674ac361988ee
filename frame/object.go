/*
NAME
  object.go

DESCRIPTION
  object.go implements spec.md §3's Object Definition and Object
  Sub-Block, including the 16-bit quantised unit-cube Position, Snap,
  Spread and decorrelation sub-fields.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "github.com/pkg/errors"

// posQuant is the quantisation step count for a Position axis (16
// bits, per spec.md §3 Object Sub-Block).
const posQuant = 65535

// Position is a 3-D unit-cube coordinate, each axis quantised to 16
// bits on the wire.
type Position struct {
	X, Y, Z float64 // each in [0,1]
}

// quantizeAxis converts an axis value in [0,1] to its 16-bit wire
// code, clamping out-of-range input.
func quantizeAxis(v float64) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint16(v*posQuant + 0.5)
}

// dequantizeAxis converts a 16-bit wire code back to [0,1].
func dequantizeAxis(c uint16) float64 {
	return float64(c) / posQuant
}

// EncodePosition quantises p to its three 16-bit wire codes.
func EncodePosition(p Position) (x, y, z uint16) {
	return quantizeAxis(p.X), quantizeAxis(p.Y), quantizeAxis(p.Z)
}

// DecodePosition reconstructs a Position from three 16-bit wire
// codes. Per spec.md §8 property 7, |DecodePosition(EncodePosition(p)) - p| <= 1/65535
// on each axis.
func DecodePosition(x, y, z uint16) Position {
	return Position{X: dequantizeAxis(x), Y: dequantizeAxis(y), Z: dequantizeAxis(z)}
}

// Snap is spec.md §3's Object Sub-Block snap field.
type Snap struct {
	Present         bool
	ToleranceExists bool
	Tolerance       uint16 // 12-bit wire value
}

// SpreadMode selects the spread representation (spec.md §3/§4.G).
type SpreadMode uint8

const (
	SpreadLowRes1D SpreadMode = iota
	SpreadHiRes1D
	SpreadHiRes3D
)

// Spread is spec.md §3's Object Sub-Block spread field: a mode and
// either one value (1-D) or three values (3-D), each a normalised
// [0,1] 16-bit quantity using the same quantisation as Position.
type Spread struct {
	Mode   SpreadMode
	Values [3]float64 // only Values[0] is meaningful for the 1-D modes
}

// NumValues returns how many of Spread.Values are meaningful for m.
func (m SpreadMode) NumValues() int {
	if m == SpreadHiRes3D {
		return 3
	}
	return 1
}

// DecorCoeff is the conditional decorrelation field carried by both
// Bed Channel and Object Sub-Block: an 8-bit prefix plus an 8-bit
// value, present only when its gate flag is set.
type DecorCoeff struct {
	Prefix uint8
	Value  uint8
}

// ObjectSubBlock is spec.md §3's Object Sub-Block. If PanInfoExists is
// false, the sub-block inherits the previous sub-block's pan state;
// iabcodec's parser is responsible for propagating that inheritance
// since frame itself does not retain cross-sub-block state.
type ObjectSubBlock struct {
	PanInfoExists bool

	Gain             Gain
	Position         Position
	Snap             Snap
	ZoneGainControl  bool
	ZoneGain         ZoneGain9
	Spread           Spread
	DecorCoeffExists bool
	DecorCoeff       DecorCoeff
}

// ObjectDefinition is spec.md §3's Object Definition.
type ObjectDefinition struct {
	MetadataID  uint32
	AudioDataID uint32 // 0 means silent
	SubBlocks   []ObjectSubBlock
}

// ElementID implements Element.
func (ObjectDefinition) ElementID() ElementID { return IDObjectDefinition }

// Validate checks the sub-block-count invariant of spec.md §3:
// "Invariant: sub-block count matches frame rate."
func (o *ObjectDefinition) Validate(fr FrameRate) error {
	k, ok := fr.SubBlockCount()
	if !ok {
		return errors.Errorf("object %d: unrecognised frame rate %v", o.MetadataID, fr)
	}
	if len(o.SubBlocks) != k {
		return errors.Errorf("object %d: has %d sub-blocks, frame rate %v requires %d", o.MetadataID, len(o.SubBlocks), fr, k)
	}
	return nil
}

// Silent reports whether the object carries no audio reference.
func (o *ObjectDefinition) Silent() bool { return o.AudioDataID == 0 }
