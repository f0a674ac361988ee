/*
NAME
  marshal_frame.go

DESCRIPTION
  marshal_frame.go implements spec.md §4.D's Frame element payload:
  version, sample_rate_code, frame_rate_code, max_rendered_assets and
  sub_element_count, plus the strict/permissive version-handling mode.

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

// sampleRateCodes maps the two legal sample rates to their 2-bit wire
// code (spec.md §3: sample_rate ∈ {48000, 96000}).
var sampleRateCodes = map[frame.SampleRate]uint32{
	frame.SampleRate48k: 0,
	frame.SampleRate96k: 1,
}

func sampleRateFromCode(code uint32) (frame.SampleRate, bool) {
	for sr, c := range sampleRateCodes {
		if c == code {
			return sr, true
		}
	}
	return 0, false
}

// packFrameHeader serialises the Frame element payload (spec.md §4.D).
// sub_element_count is the number of recognised-or-unknown sibling
// elements that will follow in the IA sub-frame.
func packFrameHeader(f *frame.Frame) ([]byte, error) {
	srCode, ok := sampleRateCodes[f.SampleRate]
	if !ok {
		return nil, iaberr.New(iaberr.KindInvalidSampleRate, "iabcodec: pack: unrecognised sample rate")
	}
	frCode, ok := f.FrameRate.Code()
	if !ok {
		return nil, iaberr.New(iaberr.KindInvalidFrameRate, "iabcodec: pack: unrecognised frame rate")
	}

	w := bitio.NewWriter(nil)
	if err := w.WriteBits(uint32(f.Version), 8); err != nil {
		return nil, err
	}
	if err := w.WriteBits(srCode, 2); err != nil {
		return nil, err
	}
	if err := w.WriteBits(frCode, 4); err != nil {
		return nil, err
	}
	if err := plex.Write8(w, uint32(f.MaxRenderedAssets)); err != nil {
		return nil, err
	}
	if err := plex.Write8(w, uint32(len(f.Elements))); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// unpackFrameHeader parses the Frame element payload, returning the
// (as yet empty of sub-elements) Frame and the declared
// sub_element_count.
func (c *Codec) unpackFrameHeader(b []byte, warnings *iaberr.Warnings) (*frame.Frame, int, error) {
	r := bitio.NewReader(b)

	version, err := r.ReadBits(8)
	if err != nil {
		return nil, 0, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: unpack frame header: version")
	}
	if !SupportedVersions[uint8(version)] {
		if c.StrictVersion {
			return nil, 0, iaberr.New(iaberr.KindInvalidVersion, "iabcodec: unrecognised frame version in strict mode")
		}
		c.warn("unrecognised frame version, continuing in permissive mode", "version", version)
		warnings.Add(iaberr.KindInvalidVersion)
	}

	srCode, err := r.ReadBits(2)
	if err != nil {
		return nil, 0, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: unpack frame header: sample_rate_code")
	}
	sr, ok := sampleRateFromCode(srCode)
	if !ok {
		return nil, 0, iaberr.Wrap(iaberr.KindInvalidSampleRate, iaberr.ErrSampleRateUnknown, "iabcodec: unpack frame header: sample_rate_code")
	}

	frCode, err := r.ReadBits(4)
	if err != nil {
		return nil, 0, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: unpack frame header: frame_rate_code")
	}
	fr, ok := frame.FrameRateFromCode(frCode)
	if !ok {
		return nil, 0, iaberr.Wrap(iaberr.KindInvalidFrameRate, iaberr.ErrFrameRateUnknown, "iabcodec: unpack frame header: frame_rate_code")
	}

	maxAssets, err := plex.Read8(r)
	if err != nil {
		return nil, 0, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: unpack frame header: max_rendered_assets")
	}
	count, err := plex.Read8(r)
	if err != nil {
		return nil, 0, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: unpack frame header: sub_element_count")
	}

	f := frame.NewFrame(sr, fr)
	f.Version = uint8(version)
	f.MaxRenderedAssets = uint16(maxAssets)
	return f, int(count), nil
}
