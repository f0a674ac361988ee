/*
NAME
  rice.go

DESCRIPTION
  rice.go implements spec.md §4.E's two residual sub-block codings: a
  raw PCM sub-block (fixed bit_depth two's complement samples) and a
  Rice sub-block (unary quotient, stop bit, fixed-width remainder,
  conditional sign bit).

  Grounded on codec/adpcm/adpcm.go's nibble-at-a-time bit accumulation
  style, generalised here to a variable-width unary/remainder code.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

import (
	"github.com/ausocean/iab/bitio"
	"github.com/pkg/errors"
)

const maxRiceRemBits = 31

// writeResidualPCM writes len(values) two's-complement samples of
// bitDepth bits each (spec.md §4.E's PCM residual sub-block).
func writeResidualPCM(w *bitio.Writer, values []int64, bitDepth int) error {
	for _, v := range values {
		if err := w.WriteBits64(uint64(v)&bitMask64(bitDepth), bitDepth); err != nil {
			return err
		}
	}
	return nil
}

// readResidualPCM reads size two's-complement samples of bitDepth bits
// each, sign-extending each to int64.
func readResidualPCM(r *bitio.Reader, size, bitDepth int) ([]int64, error) {
	out := make([]int64, size)
	for i := range out {
		u, err := r.ReadBits64(bitDepth)
		if err != nil {
			return nil, errors.Wrap(err, "dlc: read PCM residual")
		}
		out[i] = signExtend64(u, bitDepth)
	}
	return out, nil
}

// writeResidualRice Rice-codes len(values) signed residuals: a unary
// quotient (that many 1 bits), a 0 stop bit, a riceRemBits-bit
// remainder, then a sign bit present only when the value is non-zero
// (spec.md §4.E).
func writeResidualRice(w *bitio.Writer, values []int64, riceRemBits int) error {
	for _, v := range values {
		mag := v
		if mag < 0 {
			mag = -mag
		}
		quotient := mag >> uint(riceRemBits)
		remainder := mag & (int64(1)<<uint(riceRemBits) - 1)
		for q := int64(0); q < quotient; q++ {
			if err := w.WriteBool(true); err != nil {
				return err
			}
		}
		if err := w.WriteBool(false); err != nil {
			return err
		}
		if riceRemBits > 0 {
			if err := w.WriteBits64(uint64(remainder), riceRemBits); err != nil {
				return err
			}
		}
		if v != 0 {
			if err := w.WriteBool(v < 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// readResidualRice decodes size Rice-coded residuals written by
// writeResidualRice.
func readResidualRice(r *bitio.Reader, size, riceRemBits int) ([]int64, error) {
	out := make([]int64, size)
	for i := range out {
		var quotient int64
		for {
			b, err := r.ReadBool()
			if err != nil {
				return nil, errors.Wrap(err, "dlc: read Rice unary quotient")
			}
			if !b {
				break
			}
			quotient++
		}
		var remainder uint64
		if riceRemBits > 0 {
			v, err := r.ReadBits64(riceRemBits)
			if err != nil {
				return nil, errors.Wrap(err, "dlc: read Rice remainder")
			}
			remainder = v
		}
		mag := quotient<<uint(riceRemBits) | int64(remainder)
		if mag == 0 {
			out[i] = 0
			continue
		}
		neg, err := r.ReadBool()
		if err != nil {
			return nil, errors.Wrap(err, "dlc: read Rice sign bit")
		}
		if neg {
			out[i] = -mag
		} else {
			out[i] = mag
		}
	}
	return out, nil
}

// riceRemBitsFor picks a remainder width that keeps the unary
// quotient of the largest residual magnitude within a small, bounded
// number of bits, balancing code length against decode cost.
func riceRemBitsFor(values []int64) int {
	var max int64
	for _, v := range values {
		m := v
		if m < 0 {
			m = -m
		}
		if m > max {
			max = m
		}
	}
	bits := bitLen64(max)
	rem := bits - 4
	if rem < 0 {
		rem = 0
	}
	if rem > maxRiceRemBits {
		rem = maxRiceRemBits
	}
	return rem
}

func bitLen64(v int64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

func bitMask64(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

func signExtend64(u uint64, bits int) int64 {
	if bits >= 64 {
		return int64(u)
	}
	signBit := uint64(1) << uint(bits-1)
	if u&signBit != 0 {
		u |= ^uint64(0) << uint(bits)
	}
	return int64(u)
}
