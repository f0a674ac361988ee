/*
NAME
  audiodata.go

DESCRIPTION
  audiodata.go implements spec.md §3's Audio Data DLC and Audio Data
  PCM elements, including the 24-bit big-endian PCM sample packing
  confirmed by original_source/src/lib/commonstream/utils/
  PCMUtilities.h (sign-extended unpack, two's-complement pack).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "github.com/pkg/errors"

// AudioDataDLC is spec.md §3's Audio Data DLC element: an audio
// reference plus its DLC-encoded payload. The DLC payload's internal
// structure (predictor regions, residual sub-blocks) is specified and
// implemented by package dlc; frame only carries the opaque encoded
// bytes plus the fields needed to locate/validate it.
type AudioDataDLC struct {
	AudioDataID uint32
	SampleRate  SampleRate
	Payload     []byte // DLC-encoded bytes, see package dlc
}

// ElementID implements Element.
func (AudioDataDLC) ElementID() ElementID { return IDAudioDataDLC }

// AudioDataPCM is spec.md §3's Audio Data PCM element: raw 24-bit
// big-endian samples, one mono channel, frame_sample_count samples.
type AudioDataPCM struct {
	AudioDataID uint32
	Samples     []int32 // sign-extended 24-bit values
}

// ElementID implements Element.
func (AudioDataPCM) ElementID() ElementID { return IDAudioDataPCM }

// Bytes packs Samples as 24-bit big-endian two's-complement bytes,
// length = len(Samples)*3.
func (p *AudioDataPCM) Bytes() []byte {
	out := make([]byte, len(p.Samples)*3)
	for i, s := range p.Samples {
		u := uint32(s) & 0xFFFFFF
		out[i*3+0] = byte(u >> 16)
		out[i*3+1] = byte(u >> 8)
		out[i*3+2] = byte(u)
	}
	return out
}

// SamplesFromBytes unpacks 24-bit big-endian two's-complement bytes
// into sign-extended int32 samples. len(b) must be a multiple of 3.
func SamplesFromBytes(b []byte) ([]int32, error) {
	if len(b)%3 != 0 {
		return nil, errors.Errorf("frame: PCM byte length %d is not a multiple of 3", len(b))
	}
	out := make([]int32, len(b)/3)
	for i := range out {
		u := uint32(b[i*3])<<16 | uint32(b[i*3+1])<<8 | uint32(b[i*3+2])
		// Sign-extend bit 23 into the upper byte.
		if u&0x800000 != 0 {
			u |= 0xFF000000
		}
		out[i] = int32(u)
	}
	return out, nil
}

// AuthoringToolInfo is spec.md §3's Authoring Tool Info: a
// null-terminated ASCII URI-like string.
type AuthoringToolInfo struct {
	URI string
}

// ElementID implements Element.
func (AuthoringToolInfo) ElementID() ElementID { return IDAuthoringToolInfo }

// UserData is spec.md §3's User Data: a 16-byte universal label plus
// an arbitrary byte block.
type UserData struct {
	Label [16]byte
	Data  []byte
}

// ElementID implements Element.
func (UserData) ElementID() ElementID { return IDUserData }

// Unknown preserves an unrecognised sub-element as an opaque byte
// span (spec.md §3). It is counted in Frame.UnknownSubElementCount,
// and re-serialisation writes its ID and payload back out unchanged.
type Unknown struct {
	ID      ElementID
	Payload []byte
}

// ElementID implements Element.
func (u Unknown) ElementID() ElementID { return u.ID }
