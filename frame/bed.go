/*
NAME
  bed.go

DESCRIPTION
  bed.go implements spec.md §3's Bed Definition, Bed Channel and Bed
  Remap.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "github.com/pkg/errors"

// BedChannel is spec.md §3's Bed Channel.
type BedChannel struct {
	ChannelID       ChannelID
	AudioDataID     uint32
	Gain            Gain
	DecorInfoExists bool
	DecorCoeff      DecorCoeff
}

// BedRemap is a nested re-mapping of channels within a Bed Definition
// (spec.md §3: "may contain nested Bed Remap ... for multi-layout
// variants"). The remap table maps a source ChannelID to a mix of
// destination channels with per-destination gains.
type BedRemap struct {
	Entries []RemapEntry
}

// RemapEntry is one source-to-destinations mapping within a BedRemap.
type RemapEntry struct {
	Source       ChannelID
	Destinations []RemapDestination
}

// RemapDestination is one weighted destination channel of a
// RemapEntry.
type RemapDestination struct {
	Channel ChannelID
	Gain    Gain
}

// BedDefinition is spec.md §3's Bed Definition: may nest further Bed
// Definitions for multi-layout variants, and/or a BedRemap.
type BedDefinition struct {
	MetadataID uint32
	UseCase    UseCase
	Channels   []BedChannel
	Remap      *BedRemap
	Nested     []BedDefinition
}

// ElementID implements Element.
func (BedDefinition) ElementID() ElementID { return IDBedDefinition }

// Validate checks "channel IDs in a bed are unique" (spec.md §3).
func (b *BedDefinition) Validate() error {
	seen := make(map[ChannelID]bool, len(b.Channels))
	for _, c := range b.Channels {
		if seen[c.ChannelID] {
			return errors.Errorf("bed %d: duplicate channel id %v", b.MetadataID, c.ChannelID)
		}
		seen[c.ChannelID] = true
	}
	for i := range b.Nested {
		if err := b.Nested[i].Validate(); err != nil {
			return errors.Wrapf(err, "bed %d: nested bed", b.MetadataID)
		}
	}
	return nil
}
