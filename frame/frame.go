/*
NAME
  frame.go

DESCRIPTION
  frame.go defines the Element interface and the top-level Frame that
  ties spec.md §3's element variants together: version, sample rate,
  frame rate, max rendered assets, and the ordered sub-element list,
  plus the audio_data_id lookup map iabcodec's parser builds while
  reading the wire form.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "github.com/pkg/errors"

// Element is the common interface of every sub-element variant a
// Frame can carry (spec.md §3's tagged sum: BedDefinition,
// ObjectDefinition, AudioDataDLC, AudioDataPCM, AuthoringToolInfo,
// UserData, Unknown). A BedRemap is not an Element; it is carried
// inside its BedDefinition.
type Element interface {
	ElementID() ElementID
}

// Frame is spec.md §3's top-level container: one IA Frame's worth of
// metadata and audio-reference elements for one video-frame interval.
type Frame struct {
	// Preamble is the opaque byte blob spec.md §3 wraps around the IA
	// sub-frame. Per original_source/IABPackerAPI.h it is caller-
	// supplied and has no further structure of its own.
	Preamble []byte

	Version           uint8
	SampleRate        SampleRate
	FrameRate         FrameRate
	MaxRenderedAssets uint16 // 0 means "no limit asserted"

	// Elements holds every sub-element in wire order. Unknown elements
	// are preserved in-place so re-serialisation round-trips bytes the
	// codec did not understand (spec.md §4.D).
	Elements []Element

	// UnknownSubElementCount is the running tally of Unknown elements
	// encountered while parsing, independent of Elements so callers can
	// report it without re-walking the tree (spec.md §7).
	UnknownSubElementCount int

	// audioByID indexes AudioDataDLC/AudioDataPCM elements by their
	// AudioDataID, built by iabcodec while parsing (or by Builder while
	// constructing) so beds/objects can resolve their audio reference
	// without a linear scan.
	audioByID map[uint32]Element
}

// NewFrame returns an empty Frame for the given rate pair.
func NewFrame(sr SampleRate, fr FrameRate) *Frame {
	return &Frame{
		SampleRate: sr,
		FrameRate:  fr,
		audioByID:  make(map[uint32]Element),
	}
}

// Add appends e to the frame's element list, indexing it by
// AudioDataID if e is an audio-data variant.
func (f *Frame) Add(e Element) {
	if f.audioByID == nil {
		f.audioByID = make(map[uint32]Element)
	}
	switch v := e.(type) {
	case AudioDataDLC:
		f.audioByID[v.AudioDataID] = v
	case *AudioDataDLC:
		f.audioByID[v.AudioDataID] = v
	case AudioDataPCM:
		f.audioByID[v.AudioDataID] = v
	case *AudioDataPCM:
		f.audioByID[v.AudioDataID] = v
	case Unknown:
		f.UnknownSubElementCount++
	}
	f.Elements = append(f.Elements, e)
}

// AudioByID resolves an AudioDataID to its AudioDataDLC/AudioDataPCM
// element. ok is false if the frame carries no matching audio data,
// the "dangling audio reference" case spec.md §7 classifies as a
// warning, not a fatal parse error.
func (f *Frame) AudioByID(id uint32) (Element, bool) {
	if id == 0 {
		return nil, false
	}
	e, ok := f.audioByID[id]
	return e, ok
}

// Beds returns every top-level BedDefinition in wire order.
func (f *Frame) Beds() []*BedDefinition {
	var out []*BedDefinition
	for _, e := range f.Elements {
		if b, ok := e.(*BedDefinition); ok {
			out = append(out, b)
		}
	}
	return out
}

// Objects returns every ObjectDefinition in wire order.
func (f *Frame) Objects() []*ObjectDefinition {
	var out []*ObjectDefinition
	for _, e := range f.Elements {
		if o, ok := e.(*ObjectDefinition); ok {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks the Frame-level invariants of spec.md §3: sample
// rate and frame rate must each be in their closed sets, and every
// Bed/Object sub-element must validate against this frame's rate.
func (f *Frame) Validate() error {
	if !f.SampleRate.Valid() {
		return errors.Errorf("frame: unrecognised sample rate %d", f.SampleRate)
	}
	if _, ok := f.FrameRate.Code(); !ok {
		return errors.Errorf("frame: unrecognised frame rate %v", f.FrameRate)
	}
	for _, b := range f.Beds() {
		if err := b.Validate(); err != nil {
			return errors.Wrap(err, "frame")
		}
	}
	for _, o := range f.Objects() {
		if err := o.Validate(f.FrameRate); err != nil {
			return errors.Wrap(err, "frame")
		}
	}
	return nil
}
