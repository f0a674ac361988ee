/*
NAME
  marshal_object.go

DESCRIPTION
  marshal_object.go implements the Object Definition / Object
  Sub-Block bit-field schedule of spec.md §3, including pan-state
  inheritance when pan_info_exists is clear: the decoder copies the
  previous sub-block's pan fields forward, since frame.ObjectSubBlock
  itself carries no cross-sub-block state.

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
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/plex"
)

func packObjectDefinition(o *frame.ObjectDefinition) ([]byte, error) {
	w := bitio.NewWriter(nil)
	if err := plex.Write8(w, o.MetadataID); err != nil {
		return nil, err
	}
	if err := plex.Write8(w, o.AudioDataID); err != nil {
		return nil, err
	}
	if err := plex.Write8(w, uint32(len(o.SubBlocks))); err != nil {
		return nil, err
	}
	for _, sb := range o.SubBlocks {
		if err := writeObjectSubBlock(w, sb); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func writeObjectSubBlock(w *bitio.Writer, sb frame.ObjectSubBlock) error {
	if err := w.WriteBool(sb.PanInfoExists); err != nil {
		return err
	}
	if !sb.PanInfoExists {
		return nil
	}
	if err := writeGain(w, sb.Gain); err != nil {
		return err
	}
	if err := writePosition(w, sb.Position); err != nil {
		return err
	}
	if err := writeSnap(w, sb.Snap); err != nil {
		return err
	}
	if err := w.WriteBool(sb.ZoneGainControl); err != nil {
		return err
	}
	if sb.ZoneGainControl {
		if err := writeZoneGain9(w, sb.ZoneGain); err != nil {
			return err
		}
	}
	if err := writeSpread(w, sb.Spread); err != nil {
		return err
	}
	return writeDecorCoeff(w, sb.DecorCoeffExists, sb.DecorCoeff)
}

func writeSnap(w *bitio.Writer, s frame.Snap) error {
	if err := w.WriteBool(s.Present); err != nil {
		return err
	}
	if !s.Present {
		return nil
	}
	if err := w.WriteBool(s.ToleranceExists); err != nil {
		return err
	}
	if !s.ToleranceExists {
		return nil
	}
	return w.WriteBits(uint32(s.Tolerance), 12)
}

func readSnap(r *bitio.Reader) (frame.Snap, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return frame.Snap{Present: present}, err
	}
	toleranceExists, err := r.ReadBool()
	if err != nil {
		return frame.Snap{}, err
	}
	s := frame.Snap{Present: true, ToleranceExists: toleranceExists}
	if toleranceExists {
		tol, err := r.ReadBits(12)
		if err != nil {
			return frame.Snap{}, err
		}
		s.Tolerance = uint16(tol)
	}
	return s, nil
}

func writeZoneGain9(w *bitio.Writer, z frame.ZoneGain9) error {
	for _, g := range z.Zones {
		if err := writeGain(w, g); err != nil {
			return err
		}
	}
	return nil
}

func readZoneGain9(r *bitio.Reader) (frame.ZoneGain9, error) {
	var z frame.ZoneGain9
	z.Enabled = true
	for i := range z.Zones {
		g, err := readGain(r)
		if err != nil {
			return frame.ZoneGain9{}, err
		}
		z.Zones[i] = g
	}
	return z, nil
}

func writeSpread(w *bitio.Writer, s frame.Spread) error {
	if err := w.WriteBits(uint32(s.Mode), 2); err != nil {
		return err
	}
	n := s.Mode.NumValues()
	for i := 0; i < n; i++ {
		if err := w.WriteBits(uint32(s.Values[i]*posQuantForSpread+0.5), 16); err != nil {
			return err
		}
	}
	return nil
}

func readSpread(r *bitio.Reader) (frame.Spread, error) {
	m, err := r.ReadBits(2)
	if err != nil {
		return frame.Spread{}, err
	}
	mode := frame.SpreadMode(m)
	s := frame.Spread{Mode: mode}
	n := mode.NumValues()
	for i := 0; i < n; i++ {
		v, err := r.ReadBits(16)
		if err != nil {
			return frame.Spread{}, err
		}
		s.Values[i] = float64(v) / posQuantForSpread
	}
	return s, nil
}

// posQuantForSpread matches frame's 16-bit position quantisation step
// count, reused here since spread values share the same [0,1] range.
const posQuantForSpread = 65535

func unpackObjectDefinition(payload []byte, warnings *iaberr.Warnings) (*frame.ObjectDefinition, error) {
	r := bitio.NewReader(payload)

	metadataID, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: object: metadata_id")
	}
	audioID, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: object: audio_data_id")
	}
	count, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: object: sub_block_count")
	}

	o := &frame.ObjectDefinition{MetadataID: metadataID, AudioDataID: audioID}
	var prev frame.ObjectSubBlock
	for i := uint32(0); i < count; i++ {
		sb, err := readObjectSubBlock(r, prev)
		if err != nil {
			return nil, err
		}
		if sb.PanInfoExists {
			prev = sb
		}
		o.SubBlocks = append(o.SubBlocks, sb)
	}
	checkSizeMismatch(r, warnings)
	return o, nil
}

func readObjectSubBlock(r *bitio.Reader, prev frame.ObjectSubBlock) (frame.ObjectSubBlock, error) {
	panInfoExists, err := r.ReadBool()
	if err != nil {
		return frame.ObjectSubBlock{}, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: object sub-block: pan_info_exists")
	}
	if !panInfoExists {
		// Inherit the previous sub-block's pan state (spec.md §3).
		inherited := prev
		inherited.PanInfoExists = false
		return inherited, nil
	}

	sb := frame.ObjectSubBlock{PanInfoExists: true}
	sb.Gain, err = readGain(r)
	if err != nil {
		return frame.ObjectSubBlock{}, err
	}
	sb.Position, err = readPosition(r)
	if err != nil {
		return frame.ObjectSubBlock{}, err
	}
	sb.Snap, err = readSnap(r)
	if err != nil {
		return frame.ObjectSubBlock{}, err
	}
	sb.ZoneGainControl, err = r.ReadBool()
	if err != nil {
		return frame.ObjectSubBlock{}, err
	}
	if sb.ZoneGainControl {
		sb.ZoneGain, err = readZoneGain9(r)
		if err != nil {
			return frame.ObjectSubBlock{}, err
		}
	}
	sb.Spread, err = readSpread(r)
	if err != nil {
		return frame.ObjectSubBlock{}, err
	}
	sb.DecorCoeffExists, sb.DecorCoeff, err = readDecorCoeff(r)
	if err != nil {
		return frame.ObjectSubBlock{}, err
	}
	return sb, nil
}
