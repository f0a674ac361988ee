/*
NAME
  marshal_bed.go

DESCRIPTION
  marshal_bed.go implements the Bed Definition / Bed Channel / Bed
  Remap bit-field schedule: spec.md §3 gives the field set, the exact
  bit widths are this codec's own closed table (ids.go already notes
  these are invented, not ST 2098-2's restricted assignments).

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

func packBedDefinition(b *frame.BedDefinition) ([]byte, error) {
	w := bitio.NewWriter(nil)
	if err := writeBedDefinition(w, b); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeBedDefinition(w *bitio.Writer, b *frame.BedDefinition) error {
	if err := plex.Write8(w, b.MetadataID); err != nil {
		return err
	}
	if err := w.WriteBits(uint32(b.UseCase), 8); err != nil {
		return err
	}
	if err := plex.Write8(w, uint32(len(b.Channels))); err != nil {
		return err
	}
	for _, ch := range b.Channels {
		if err := w.WriteBits(uint32(ch.ChannelID), 8); err != nil {
			return err
		}
		if err := plex.Write8(w, ch.AudioDataID); err != nil {
			return err
		}
		if err := writeGain(w, ch.Gain); err != nil {
			return err
		}
		if err := writeDecorCoeff(w, ch.DecorInfoExists, ch.DecorCoeff); err != nil {
			return err
		}
	}

	if err := w.WriteBool(b.Remap != nil); err != nil {
		return err
	}
	if b.Remap != nil {
		if err := writeBedRemap(w, b.Remap); err != nil {
			return err
		}
	}

	if err := plex.Write8(w, uint32(len(b.Nested))); err != nil {
		return err
	}
	for i := range b.Nested {
		if err := writeBedDefinition(w, &b.Nested[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeBedRemap(w *bitio.Writer, remap *frame.BedRemap) error {
	if err := plex.Write8(w, uint32(len(remap.Entries))); err != nil {
		return err
	}
	for _, e := range remap.Entries {
		if err := w.WriteBits(uint32(e.Source), 8); err != nil {
			return err
		}
		if err := plex.Write8(w, uint32(len(e.Destinations))); err != nil {
			return err
		}
		for _, d := range e.Destinations {
			if err := w.WriteBits(uint32(d.Channel), 8); err != nil {
				return err
			}
			if err := writeGain(w, d.Gain); err != nil {
				return err
			}
		}
	}
	return nil
}

func unpackBedDefinition(payload []byte, warnings *iaberr.Warnings) (*frame.BedDefinition, error) {
	r := bitio.NewReader(payload)
	b, err := readBedDefinition(r, warnings)
	if err != nil {
		return nil, err
	}
	checkSizeMismatch(r, warnings)
	return b, nil
}

func readBedDefinition(r *bitio.Reader, warnings *iaberr.Warnings) (*frame.BedDefinition, error) {
	metadataID, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: bed: metadata_id")
	}
	useCase, err := r.ReadBits(8)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: bed: use_case")
	}

	chCount, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: bed: channel_count")
	}

	b := &frame.BedDefinition{MetadataID: metadataID, UseCase: frame.UseCase(useCase)}
	for i := uint32(0); i < chCount; i++ {
		chID, err := r.ReadBits(8)
		if err != nil {
			return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: bed channel: channel_id")
		}
		audioID, err := plex.Read8(r)
		if err != nil {
			return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: bed channel: audio_data_id")
		}
		gain, err := readGain(r)
		if err != nil {
			return nil, err
		}
		exists, decor, err := readDecorCoeff(r)
		if err != nil {
			return nil, err
		}
		cid := frame.ChannelID(chID)
		if !cid.Recognised() {
			warnings.Add(iaberr.KindFrameStructure)
		}
		b.Channels = append(b.Channels, frame.BedChannel{
			ChannelID:       cid,
			AudioDataID:     audioID,
			Gain:            gain,
			DecorInfoExists: exists,
			DecorCoeff:      decor,
		})
	}

	hasRemap, err := r.ReadBool()
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: bed: remap flag")
	}
	if hasRemap {
		remap, err := readBedRemap(r)
		if err != nil {
			return nil, err
		}
		b.Remap = remap
	}

	nestedCount, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: bed: nested_count")
	}
	for i := uint32(0); i < nestedCount; i++ {
		nested, err := readBedDefinition(r, warnings)
		if err != nil {
			return nil, err
		}
		b.Nested = append(b.Nested, *nested)
	}

	if err := b.Validate(); err != nil {
		return nil, iaberr.Wrap(iaberr.KindFrameStructure, err, "iabcodec: bed")
	}
	return b, nil
}

func readBedRemap(r *bitio.Reader) (*frame.BedRemap, error) {
	entryCount, err := plex.Read8(r)
	if err != nil {
		return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: bed remap: entry_count")
	}
	remap := &frame.BedRemap{}
	for i := uint32(0); i < entryCount; i++ {
		src, err := r.ReadBits(8)
		if err != nil {
			return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: bed remap: source")
		}
		destCount, err := plex.Read8(r)
		if err != nil {
			return nil, iaberr.Wrap(iaberr.KindBadPlex, err, "iabcodec: bed remap: dest_count")
		}
		entry := frame.RemapEntry{Source: frame.ChannelID(src)}
		for j := uint32(0); j < destCount; j++ {
			ch, err := r.ReadBits(8)
			if err != nil {
				return nil, iaberr.Wrap(iaberr.KindIOShort, err, "iabcodec: bed remap: dest channel")
			}
			gain, err := readGain(r)
			if err != nil {
				return nil, err
			}
			entry.Destinations = append(entry.Destinations, frame.RemapDestination{Channel: frame.ChannelID(ch), Gain: gain})
		}
		remap.Entries = append(remap.Entries, entry)
	}
	return remap, nil
}
