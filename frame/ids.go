/*
NAME
  ids.go

DESCRIPTION
  ids.go defines the closed lookup tables spec.md §3/§4.D refer to:
  element IDs, loudspeaker channel labels, bed use-cases, and the
  frame-rate → object-sub-block-count mapping.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame implements the ST 2098-2 frame tree data model:
// spec.md §3's typed sum of element variants and the invariants each
// variant must satisfy, grounded on container/mts/psi.go's
// struct-per-table-type layout (PSI/SyntaxSection/PAT/PMT).
package frame

// ElementID identifies the wire type of an element, dispatched by
// iabcodec's parser. Recognised IDs are a closed table per spec.md
// §4.D; any other value is preserved as Unknown.
type ElementID uint32

// Recognised element IDs. Values are chosen to be distinct and do not
// attempt to reproduce the restricted ST 2098-2 numeric assignments
// verbatim; only relative distinctness and the preamble/sub-frame
// wrapper order (spec.md §4.D) are load-bearing for this codec.
const (
	IDPreamble ElementID = 0x01
	IDIAFrame  ElementID = 0x02

	IDFrame ElementID = 0x10

	IDBedDefinition    ElementID = 0x20
	IDBedRemap         ElementID = 0x21
	IDObjectDefinition ElementID = 0x22

	IDAudioDataDLC ElementID = 0x30
	IDAudioDataPCM ElementID = 0x31

	IDAuthoringToolInfo ElementID = 0x40
	IDUserData          ElementID = 0x41
)

// ChannelID enumerates recognised loudspeaker labels for a bed
// channel (spec.md §3 Bed Channel).
type ChannelID uint8

const (
	ChannelUnknown ChannelID = iota
	ChannelL
	ChannelC
	ChannelR
	ChannelLS
	ChannelRS
	ChannelLFE
	ChannelLSS
	ChannelRSS
	ChannelLRS
	ChannelRRS
	ChannelTSL
	ChannelTSR
	ChannelTBL
	ChannelTBR
)

var channelNames = map[ChannelID]string{
	ChannelL:   "L",
	ChannelC:   "C",
	ChannelR:   "R",
	ChannelLS:  "LS",
	ChannelRS:  "RS",
	ChannelLFE: "LFE",
	ChannelLSS: "LSS",
	ChannelRSS: "RSS",
	ChannelLRS: "LRS",
	ChannelRRS: "RRS",
	ChannelTSL: "TSL",
	ChannelTSR: "TSR",
	ChannelTBL: "TBL",
	ChannelTBR: "TBR",
}

func (c ChannelID) String() string {
	if s, ok := channelNames[c]; ok {
		return s
	}
	return "Unknown"
}

// Recognised reports whether c is a known channel label. An unknown
// channel ID in a bed triggers the spec.md §4.H "channel dropped"
// warning rather than a parse failure.
func (c ChannelID) Recognised() bool {
	_, ok := channelNames[c]
	return ok
}

// UseCase enumerates the bed's loudspeaker layout (spec.md §3 Bed
// Definition).
type UseCase uint8

const (
	UseCaseNone UseCase = iota
	UseCase51
	UseCase71DS
	UseCase91OH
	UseCase50
	UseCase70
)

// SampleRate enumerates the two sample rates spec.md §3 allows.
type SampleRate uint32

const (
	SampleRate48k SampleRate = 48000
	SampleRate96k SampleRate = 96000
)

// Valid reports whether sr is one of the two rates spec.md §3 permits.
func (sr SampleRate) Valid() bool {
	return sr == SampleRate48k || sr == SampleRate96k
}

// FrameRate enumerates the closed set of frame rates in spec.md §3,
// each carrying a fixed 4-bit frame-rate wire code and a fixed
// object-sub-block count (spec.md §3 Object Definition).
type FrameRate float64

const (
	FrameRate23_976 FrameRate = 23.976
	FrameRate24     FrameRate = 24
	FrameRate25     FrameRate = 25
	FrameRate29_97  FrameRate = 29.97
	FrameRate30     FrameRate = 30
	FrameRate47_95  FrameRate = 47.95
	FrameRate48     FrameRate = 48
	FrameRate50     FrameRate = 50
	FrameRate59_94  FrameRate = 59.94
	FrameRate60     FrameRate = 60
	FrameRate96     FrameRate = 96
	FrameRate100    FrameRate = 100
	FrameRate119_88 FrameRate = 119.88
	FrameRate120    FrameRate = 120
)

// frameRateCodes assigns each recognised frame rate a 4-bit wire code
// and its fixed object-sub-block count (closed lookup table per
// spec.md §3).
var frameRateCodes = []struct {
	rate   FrameRate
	code   uint32
	blocks int
}{
	{FrameRate23_976, 0, 8},
	{FrameRate24, 1, 8},
	{FrameRate25, 2, 8},
	{FrameRate29_97, 3, 6},
	{FrameRate30, 4, 6},
	{FrameRate47_95, 5, 4},
	{FrameRate48, 6, 4},
	{FrameRate50, 7, 4},
	{FrameRate59_94, 8, 3},
	{FrameRate60, 9, 3},
	{FrameRate96, 10, 2},
	{FrameRate100, 11, 2},
	{FrameRate119_88, 12, 2},
	{FrameRate120, 13, 2},
}

// FrameRateFromCode resolves a 4-bit wire code to a FrameRate. ok is
// false for an unrecognised code.
func FrameRateFromCode(code uint32) (FrameRate, bool) {
	for _, e := range frameRateCodes {
		if e.code == code {
			return e.rate, true
		}
	}
	return 0, false
}

// Code returns fr's 4-bit wire code. ok is false if fr is not in the
// closed set spec.md §3 allows.
func (fr FrameRate) Code() (uint32, bool) {
	for _, e := range frameRateCodes {
		if e.rate == fr {
			return e.code, true
		}
	}
	return 0, false
}

// SubBlockCount returns K, the fixed number of Object Sub-Blocks per
// frame at this rate (spec.md §3: "8 for 24 fps, 4 for 48 fps, 2 for
// 96 fps, etc.; the mapping is a closed lookup table").
func (fr FrameRate) SubBlockCount() (int, bool) {
	for _, e := range frameRateCodes {
		if e.rate == fr {
			return e.blocks, true
		}
	}
	return 0, false
}

// SampleCount returns round(sample_rate / frame_rate), the invariant
// spec.md §3 names for Frame.
func SampleCount(sr SampleRate, fr FrameRate) int {
	return int(float64(sr)/float64(fr) + 0.5)
}
