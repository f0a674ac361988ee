package iabcodec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
)

func buildTestFrame(t *testing.T) *frame.Frame {
	t.Helper()
	b := frame.NewBuilder(frame.SampleRate48k, frame.FrameRate24)
	audioID := b.NextAudioDataID()
	b.AddAudioPCM(frame.AudioDataPCM{AudioDataID: audioID, Samples: make([]int32, frame.SampleCount(frame.SampleRate48k, frame.FrameRate24))})
	bedID := b.NextMetadataID()
	b.AddBed(frame.BedDefinition{
		MetadataID: bedID,
		UseCase:    frame.UseCase51,
		Channels: []frame.BedChannel{
			{ChannelID: frame.ChannelL, AudioDataID: audioID, Gain: frame.UnityGain},
			{ChannelID: frame.ChannelR, AudioDataID: audioID, Gain: frame.EncodeGain(0.5)},
		},
	})
	b.AddAuthoringToolInfo(frame.AuthoringToolInfo{URI: "urn:test:authoring-tool"})
	f, err := b.Build()
	if err != nil {
		t.Fatalf("buildTestFrame: Build: %v", err)
	}
	f.Preamble = []byte("preamble-blob")
	f.Version = 1
	return f
}

var cmpFrameOpts = []cmp.Option{
	cmpopts.IgnoreUnexported(frame.Frame{}),
	cmpopts.EquateEmpty(),
}

func TestPackParseRoundTrip(t *testing.T) {
	f := buildTestFrame(t)
	c := NewCodec(nil)

	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, warnings, err := c.Parse(wire)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if warnings.Total() != 0 {
		t.Fatalf("unexpected warnings: %v", warnings.Snapshot())
	}
	if diff := cmp.Diff(f, got, cmpFrameOpts...); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnknownElementSkipped(t *testing.T) {
	f := buildTestFrame(t)
	f.Add(frame.Unknown{ID: frame.ElementID(0xEE), Payload: []byte{1, 2, 3, 4}})
	c := NewCodec(nil)

	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, warnings, err := c.Parse(wire)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if warnings.UnknownElementCount() != 1 {
		t.Fatalf("UnknownElementCount = %d, want 1", warnings.UnknownElementCount())
	}
	if got.UnknownSubElementCount != 1 {
		t.Fatalf("Frame.UnknownSubElementCount = %d, want 1", got.UnknownSubElementCount)
	}
	if len(got.Beds()) != 1 {
		t.Fatalf("expected neighbouring bed to still parse, got %d beds", len(got.Beds()))
	}
}

func TestParseStrictVersionRejectsUnrecognised(t *testing.T) {
	f := buildTestFrame(t)
	f.Version = 99
	c := NewCodec(nil)

	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if _, _, err := c.Parse(wire); err == nil {
		t.Fatal("expected strict-mode parse to fail on unrecognised version")
	}
}

func TestParsePermissiveVersionWarnsAndContinues(t *testing.T) {
	f := buildTestFrame(t)
	f.Version = 99
	c := NewCodec(nil)

	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	c.StrictVersion = false
	got, warnings, err := c.Parse(wire)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if warnings.Count(iaberr.KindInvalidVersion) != 1 {
		t.Fatalf("InvalidVersion warning count = %d, want 1", warnings.Count(iaberr.KindInvalidVersion))
	}
	if len(got.Beds()) != 1 {
		t.Fatalf("expected frame to still parse permissively, got %d beds", len(got.Beds()))
	}
}

func TestFrameCRCRoundTrip(t *testing.T) {
	f := buildTestFrame(t)
	c := NewCodec(nil)
	c.EmitFrameCRC = true

	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if _, _, err := c.Parse(wire); err != nil {
		t.Fatalf("Parse with CRC: %v", err)
	}

	corrupted := append([]byte(nil), wire...)
	corrupted[len(corrupted)-1] ^= 0xFF

	c.StrictCRC = true
	if _, _, err := c.Parse(corrupted); err == nil {
		t.Fatal("expected strict CRC mismatch to fail parse")
	}
}

func TestSizeFieldAuthorityOverLongPayload(t *testing.T) {
	// Build a User Data element with a long free-form Data block, then
	// place a recognisable second element after it. The unmarshaller
	// claims the whole payload, so its end is set only by the outer
	// Plex8 length; the sibling must parse unaffected and no warning
	// may be recorded. (The stop-short case is covered by
	// TestUnpackBedDefinitionSizeMismatch.)
	userData := frame.UserData{Data: []byte("trailing bytes the unmarshaller never walks byte-by-byte")}
	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate24)
	f.Version = 1
	f.Add(userData)
	f.Add(frame.AuthoringToolInfo{URI: "urn:after"})

	c := NewCodec(nil)
	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, warnings, err := c.Parse(wire)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if warnings.Total() != 0 {
		t.Fatalf("unexpected warnings: %v", warnings.Snapshot())
	}
	var sawAuthoring bool
	for _, e := range got.Elements {
		if ati, ok := e.(frame.AuthoringToolInfo); ok && ati.URI == "urn:after" {
			sawAuthoring = true
		}
	}
	if !sawAuthoring {
		t.Fatal("sibling element after a long User Data payload failed to parse")
	}
}

func TestUnpackAuthoringToolInfoSizeMismatch(t *testing.T) {
	payload := append([]byte("urn:x\x00"), 1, 2, 3)
	warnings := &iaberr.Warnings{}
	info := unpackAuthoringToolInfo(payload, warnings)
	if info.URI != "urn:x" {
		t.Fatalf("URI = %q, want %q", info.URI, "urn:x")
	}
	if warnings.Count(iaberr.KindSizeMismatch) != 1 {
		t.Fatalf("SizeMismatch count = %d, want 1", warnings.Count(iaberr.KindSizeMismatch))
	}
}

func TestUnpackBedDefinitionSizeMismatch(t *testing.T) {
	b := &frame.BedDefinition{
		MetadataID: 1,
		UseCase:    frame.UseCase51,
		Channels: []frame.BedChannel{
			{ChannelID: frame.ChannelL, AudioDataID: 1, Gain: frame.UnityGain},
		},
	}
	payload, err := packBedDefinition(b)
	if err != nil {
		t.Fatalf("packBedDefinition: %v", err)
	}
	payload = append(payload, 0xFF, 0xFF) // trailing bytes the declared length claims but the bed never uses

	warnings := &iaberr.Warnings{}
	got, err := unpackBedDefinition(payload, warnings)
	if err != nil {
		t.Fatalf("unpackBedDefinition: %v", err)
	}
	if len(got.Channels) != 1 {
		t.Fatalf("expected bed to still parse, got %d channels", len(got.Channels))
	}
	if warnings.Count(iaberr.KindSizeMismatch) != 1 {
		t.Fatalf("SizeMismatch count = %d, want 1", warnings.Count(iaberr.KindSizeMismatch))
	}
}

func TestReadElementRejectsOversizedLength(t *testing.T) {
	f := buildTestFrame(t)
	c := NewCodec(nil)
	wire, err := c.Pack(f)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	truncated := wire[:len(wire)-5]
	if _, _, err := c.Parse(truncated); err == nil {
		t.Fatal("expected parse of truncated stream to fail")
	}
}
