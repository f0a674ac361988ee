/*
NAME
  gain.go

DESCRIPTION
  gain.go implements the Gain and ZoneGain value types of spec.md §3:
  a 2-bit prefix selecting Unity/Silence/InStream/Reserved, with a
  10-bit mantissa carried only for InStream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "github.com/ausocean/iab/iaberr"

// GainPrefix is the 2-bit selector of a Gain's representation.
type GainPrefix uint8

const (
	GainUnity GainPrefix = iota
	GainSilence
	GainInStream
	gainReserved // a parse error if encountered; never constructed directly
)

// gainMantissaMax is the largest representable 10-bit mantissa.
const gainMantissaMax = 1023

// Gain is spec.md §3's Gain: a prefix plus an optional 10-bit
// mantissa, carrying a semantic float value of 1.0 / 0.0 /
// mantissa/1023.0 for Unity / Silence / InStream respectively.
type Gain struct {
	Prefix   GainPrefix
	Mantissa uint16 // valid range [0,1023], meaningful only when Prefix == GainInStream
}

// UnityGain is the Gain whose semantic value is 1.0.
var UnityGain = Gain{Prefix: GainUnity}

// SilentGain is the Gain whose semantic value is 0.0.
var SilentGain = Gain{Prefix: GainSilence}

// Value returns the semantic float value of g.
func (g Gain) Value() float64 {
	switch g.Prefix {
	case GainUnity:
		return 1.0
	case GainSilence:
		return 0.0
	case GainInStream:
		return float64(g.Mantissa) / gainMantissaMax
	default:
		return 0.0
	}
}

// EncodeGain quantises g ∈ [0,1] into an InStream Gain, or into Unity
// / Silence at the extremes, matching spec.md §8 property 6's
// tolerance bands (silent below 1/2046, unity above 1-1/2046).
func EncodeGain(g float64) Gain {
	switch {
	case g <= 0.5/gainMantissaMax:
		return SilentGain
	case g >= 1-0.5/gainMantissaMax:
		return UnityGain
	default:
		m := int(g*gainMantissaMax + 0.5)
		if m < 0 {
			m = 0
		}
		if m > gainMantissaMax {
			m = gainMantissaMax
		}
		return Gain{Prefix: GainInStream, Mantissa: uint16(m)}
	}
}

// Valid reports whether g's prefix is one of the three legal values;
// Reserved is a parse error per spec.md §3.
func (g Gain) Valid() bool {
	return g.Prefix == GainUnity || g.Prefix == GainSilence || g.Prefix == GainInStream
}

// ValidateGainPrefix returns iaberr.ErrReservedGainPrefix if p is the
// reserved prefix value, used by iabcodec when decoding a raw 2-bit
// field off the wire.
func ValidateGainPrefix(p GainPrefix) error {
	if p > GainInStream {
		return iaberr.ErrReservedGainPrefix
	}
	return nil
}

// ZoneGain9 is spec.md §3's 9-zone Zone Gain: a control flag and nine
// per-zone Gains, each independently Unity/Silence/InStream.
type ZoneGain9 struct {
	Enabled bool
	Zones   [9]Gain
}
