/*
NAME
  builder.go

DESCRIPTION
  builder.go implements a fluent Frame builder that enforces spec.md
  §9's construction-time invariants (unique metadata IDs, unique
  channel IDs within a bed, sub-block counts matching the frame rate)
  as elements are added, rather than deferring every check to a
  post-hoc Validate call. audio_data_id uniqueness is not checked.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "github.com/pkg/errors"

// Builder assembles a Frame incrementally, allocating metadata_id and
// audio_data_id values from two independent monotonic counters
// (spec.md §9: "IDs are assigned by the authoring tool and need only
// be unique within their own namespace").
type Builder struct {
	f *Frame

	nextMetadataID  uint32
	nextAudioDataID uint32

	metadataIDs map[uint32]bool
	err         error
}

// NewBuilder starts a Builder for a frame at the given rates.
func NewBuilder(sr SampleRate, fr FrameRate) *Builder {
	return &Builder{
		f:               NewFrame(sr, fr),
		nextMetadataID:  1,
		nextAudioDataID: 1,
		metadataIDs:     make(map[uint32]bool),
	}
}

// NextMetadataID allocates the next unused metadata_id.
func (b *Builder) NextMetadataID() uint32 {
	id := b.nextMetadataID
	b.nextMetadataID++
	return id
}

// NextAudioDataID allocates the next unused audio_data_id.
func (b *Builder) NextAudioDataID() uint32 {
	id := b.nextAudioDataID
	b.nextAudioDataID++
	return id
}

// fail records the first error seen, so callers can chain builder
// calls and check Build's returned error once at the end.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// checkMetadataID enforces per-frame metadata_id uniqueness.
func (b *Builder) checkMetadataID(id uint32) {
	if b.metadataIDs[id] {
		b.fail(errors.Errorf("builder: duplicate metadata_id %d", id))
		return
	}
	b.metadataIDs[id] = true
}

// AddBed appends a validated BedDefinition.
func (b *Builder) AddBed(bed BedDefinition) *Builder {
	b.checkMetadataID(bed.MetadataID)
	if err := bed.Validate(); err != nil {
		b.fail(errors.Wrap(err, "builder"))
		return b
	}
	b.f.Add(&bed)
	return b
}

// AddObject appends a validated ObjectDefinition, checking its
// sub-block count against the frame's rate (spec.md §3 invariant).
func (b *Builder) AddObject(obj ObjectDefinition) *Builder {
	b.checkMetadataID(obj.MetadataID)
	if err := obj.Validate(b.f.FrameRate); err != nil {
		b.fail(errors.Wrap(err, "builder"))
		return b
	}
	b.f.Add(&obj)
	return b
}

// AddAudioDLC appends an Audio Data DLC element.
func (b *Builder) AddAudioDLC(a AudioDataDLC) *Builder {
	b.f.Add(a)
	return b
}

// AddAudioPCM appends an Audio Data PCM element.
func (b *Builder) AddAudioPCM(a AudioDataPCM) *Builder {
	b.f.Add(a)
	return b
}

// AddAuthoringToolInfo appends an Authoring Tool Info element.
func (b *Builder) AddAuthoringToolInfo(a AuthoringToolInfo) *Builder {
	b.f.Add(a)
	return b
}

// AddUserData appends a User Data element.
func (b *Builder) AddUserData(u UserData) *Builder {
	b.f.Add(u)
	return b
}

// MaxRenderedAssets sets the frame's optional asset-count cap.
func (b *Builder) MaxRenderedAssets(n uint16) *Builder {
	b.f.MaxRenderedAssets = n
	return b
}

// Build validates cross-element references (every non-zero
// AudioDataID used by a bed channel or object resolves to an audio
// element present in the frame) and returns the finished Frame, or
// the first error recorded during construction.
func (b *Builder) Build() (*Frame, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, bed := range b.f.Beds() {
		for _, ch := range bed.Channels {
			if ch.AudioDataID == 0 {
				continue
			}
			if _, ok := b.f.AudioByID(ch.AudioDataID); !ok {
				return nil, errors.Errorf("builder: bed %d channel %v references missing audio_data_id %d", bed.MetadataID, ch.ChannelID, ch.AudioDataID)
			}
		}
	}
	for _, obj := range b.f.Objects() {
		if obj.Silent() {
			continue
		}
		if _, ok := b.f.AudioByID(obj.AudioDataID); !ok {
			return nil, errors.Errorf("builder: object %d references missing audio_data_id %d", obj.MetadataID, obj.AudioDataID)
		}
	}
	if err := b.f.Validate(); err != nil {
		return nil, err
	}
	return b.f, nil
}
