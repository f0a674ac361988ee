/*
NAME
  marshal_common.go

DESCRIPTION
  marshal_common.go implements the bit-field codecs shared by Bed
  Channel and Object Sub-Block: Gain (2-bit prefix + optional 10-bit
  mantissa), decor coefficient (8+8 bits, conditional) and Position
  (three 16-bit quantised axes).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package iabcodec

import (
	"github.com/ausocean/iab/bitio"
	"github.com/ausocean/iab/frame"
)

func writeGain(w *bitio.Writer, g frame.Gain) error {
	if err := w.WriteBits(uint32(g.Prefix), 2); err != nil {
		return err
	}
	if g.Prefix == frame.GainInStream {
		return w.WriteBits(uint32(g.Mantissa), 10)
	}
	return nil
}

func readGain(r *bitio.Reader) (frame.Gain, error) {
	p, err := r.ReadBits(2)
	if err != nil {
		return frame.Gain{}, err
	}
	prefix := frame.GainPrefix(p)
	if err := frame.ValidateGainPrefix(prefix); err != nil {
		return frame.Gain{}, err
	}
	g := frame.Gain{Prefix: prefix}
	if prefix == frame.GainInStream {
		m, err := r.ReadBits(10)
		if err != nil {
			return frame.Gain{}, err
		}
		g.Mantissa = uint16(m)
	}
	return g, nil
}

func writeDecorCoeff(w *bitio.Writer, exists bool, d frame.DecorCoeff) error {
	if err := w.WriteBool(exists); err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := w.WriteBits(uint32(d.Prefix), 8); err != nil {
		return err
	}
	return w.WriteBits(uint32(d.Value), 8)
}

func readDecorCoeff(r *bitio.Reader) (bool, frame.DecorCoeff, error) {
	exists, err := r.ReadBool()
	if err != nil || !exists {
		return exists, frame.DecorCoeff{}, err
	}
	prefix, err := r.ReadBits(8)
	if err != nil {
		return true, frame.DecorCoeff{}, err
	}
	val, err := r.ReadBits(8)
	if err != nil {
		return true, frame.DecorCoeff{}, err
	}
	return true, frame.DecorCoeff{Prefix: uint8(prefix), Value: uint8(val)}, nil
}

func writePosition(w *bitio.Writer, p frame.Position) error {
	x, y, z := frame.EncodePosition(p)
	if err := w.WriteBits(uint32(x), 16); err != nil {
		return err
	}
	if err := w.WriteBits(uint32(y), 16); err != nil {
		return err
	}
	return w.WriteBits(uint32(z), 16)
}

func readPosition(r *bitio.Reader) (frame.Position, error) {
	x, err := r.ReadBits(16)
	if err != nil {
		return frame.Position{}, err
	}
	y, err := r.ReadBits(16)
	if err != nil {
		return frame.Position{}, err
	}
	z, err := r.ReadBits(16)
	if err != nil {
		return frame.Position{}, err
	}
	return frame.DecodePosition(uint16(x), uint16(y), uint16(z)), nil
}
