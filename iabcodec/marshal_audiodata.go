/*
NAME
  marshal_audiodata.go

DESCRIPTION
  marshal_audiodata.go implements the Audio Data DLC and Audio Data
  PCM element payloads of spec.md §3: an audio_data_id reference
  followed by byte-aligned opaque (DLC) or raw 24-bit (PCM) sample
  data, sized by the enclosing element's declared payload length
  rather than a redundant inner length field.

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

func packAudioDataDLC(a *frame.AudioDataDLC) []byte {
	w := bitio.NewWriter(nil)
	_ = plex.Write8(w, a.AudioDataID)
	sr := uint32(0)
	if a.SampleRate == frame.SampleRate96k {
		sr = 1
	}
	_ = w.WriteBits(sr, 1)
	w.Align()
	out := w.Bytes()
	return append(out, a.Payload...)
}

// unpackAudioDataDLC reads its two header fields then claims the rest
// of the payload verbatim, so it always consumes the declared length
// exactly and needs no SizeMismatch check.
func unpackAudioDataDLC(payload []byte) (*frame.AudioDataDLC, error) {
	r := bitio.NewReader(payload)
	id, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: audio data dlc: audio_data_id")
	}
	srBit, err := r.ReadBits(1)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: audio data dlc: sample_rate")
	}
	r.Align()
	rest, err := r.ReadBytes(int(r.Remaining() / 8))
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: audio data dlc: payload")
	}
	sr := frame.SampleRate48k
	if srBit == 1 {
		sr = frame.SampleRate96k
	}
	return &frame.AudioDataDLC{AudioDataID: id, SampleRate: sr, Payload: rest}, nil
}

func packAudioDataPCM(a *frame.AudioDataPCM) []byte {
	w := bitio.NewWriter(nil)
	_ = plex.Write8(w, a.AudioDataID)
	out := w.Bytes()
	return append(out, a.Bytes()...)
}

// unpackAudioDataPCM claims the whole payload after its one header
// field, so it too always ends exactly at the declared length.
func unpackAudioDataPCM(payload []byte) (*frame.AudioDataPCM, error) {
	r := bitio.NewReader(payload)
	id, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: audio data pcm: audio_data_id")
	}
	rest, err := r.ReadBytes(int(r.Remaining() / 8))
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: audio data pcm: samples")
	}
	samples, err := frame.SamplesFromBytes(rest)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindFrameStructure, err, "iabcodec: audio data pcm")
	}
	return &frame.AudioDataPCM{AudioDataID: id, Samples: samples}, nil
}
