package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestGainEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want GainPrefix
	}{
		{"silent", 0, GainSilence},
		{"near-silent", 0.0001, GainSilence},
		{"unity", 1, GainUnity},
		{"near-unity", 0.9999, GainUnity},
		{"mid", 0.5, GainInStream},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := EncodeGain(c.in)
			if g.Prefix != c.want {
				t.Fatalf("EncodeGain(%v).Prefix = %v, want %v", c.in, g.Prefix, c.want)
			}
			if got := g.Value(); got < 0 || got > 1 {
				t.Fatalf("Value() out of range: %v", got)
			}
		})
	}
}

func TestGainValuePropertyRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(0, 1).Draw(t, "v")
		g := EncodeGain(v)
		if !g.Valid() {
			t.Fatalf("EncodeGain produced invalid prefix %v", g.Prefix)
		}
		got := g.Value()
		if got < -1e-9 || got > 1+1e-9 {
			t.Fatalf("Value() = %v out of [0,1]", got)
		}
	})
}

func TestPositionQuantizeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Position{
			X: rapid.Float64Range(0, 1).Draw(t, "x"),
			Y: rapid.Float64Range(0, 1).Draw(t, "y"),
			Z: rapid.Float64Range(0, 1).Draw(t, "z"),
		}
		x, y, z := EncodePosition(p)
		got := DecodePosition(x, y, z)
		const tol = 1.0 / posQuant
		if diff := got.X - p.X; diff > tol || diff < -tol {
			t.Fatalf("X round trip off by %v", diff)
		}
		if diff := got.Y - p.Y; diff > tol || diff < -tol {
			t.Fatalf("Y round trip off by %v", diff)
		}
		if diff := got.Z - p.Z; diff > tol || diff < -tol {
			t.Fatalf("Z round trip off by %v", diff)
		}
	})
}

func TestBedDefinitionValidateDuplicateChannel(t *testing.T) {
	bed := BedDefinition{
		MetadataID: 1,
		Channels: []BedChannel{
			{ChannelID: ChannelL, AudioDataID: 1},
			{ChannelID: ChannelL, AudioDataID: 2},
		},
	}
	if err := bed.Validate(); err == nil {
		t.Fatal("expected error for duplicate channel id")
	}
}

func TestBedDefinitionValidateNested(t *testing.T) {
	bed := BedDefinition{
		MetadataID: 1,
		Channels:   []BedChannel{{ChannelID: ChannelL}},
		Nested: []BedDefinition{
			{MetadataID: 2, Channels: []BedChannel{{ChannelID: ChannelR}, {ChannelID: ChannelR}}},
		},
	}
	if err := bed.Validate(); err == nil {
		t.Fatal("expected error from nested bed validation")
	}
}

func TestObjectDefinitionValidateSubBlockCount(t *testing.T) {
	obj := ObjectDefinition{MetadataID: 1, AudioDataID: 1, SubBlocks: make([]ObjectSubBlock, 4)}
	if err := obj.Validate(FrameRate48); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := obj.Validate(FrameRate24); err == nil {
		t.Fatal("expected sub-block count mismatch error")
	}
}

func TestFrameRateTables(t *testing.T) {
	for _, want := range []FrameRate{FrameRate23_976, FrameRate30, FrameRate60, FrameRate120} {
		code, ok := want.Code()
		if !ok {
			t.Fatalf("Code() failed for %v", want)
		}
		got, ok := FrameRateFromCode(code)
		if !ok || got != want {
			t.Fatalf("FrameRateFromCode(%d) = %v,%v want %v,true", code, got, ok, want)
		}
	}
}

func TestSampleCount(t *testing.T) {
	if got := SampleCount(SampleRate48k, FrameRate24); got != 2000 {
		t.Fatalf("SampleCount(48k,24fps) = %d, want 2000", got)
	}
	if got := SampleCount(SampleRate48k, FrameRate23_976); got != 2002 {
		t.Fatalf("SampleCount(48k,23.976fps) = %d, want 2002", got)
	}
}

func TestPCMSampleRoundTrip(t *testing.T) {
	in := []int32{0, 1, -1, 8388607, -8388608, 12345, -54321}
	p := AudioDataPCM{AudioDataID: 1, Samples: in}
	b := p.Bytes()
	if len(b) != len(in)*3 {
		t.Fatalf("Bytes() length = %d, want %d", len(b), len(in)*3)
	}
	out, err := SamplesFromBytes(b)
	if err != nil {
		t.Fatalf("SamplesFromBytes: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("PCM round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderBuildsValidFrame(t *testing.T) {
	b := NewBuilder(SampleRate48k, FrameRate24)
	audioID := b.NextAudioDataID()
	b.AddAudioPCM(AudioDataPCM{AudioDataID: audioID, Samples: make([]int32, 2000)})
	bedID := b.NextMetadataID()
	b.AddBed(BedDefinition{
		MetadataID: bedID,
		UseCase:    UseCase51,
		Channels:   []BedChannel{{ChannelID: ChannelL, AudioDataID: audioID, Gain: UnityGain}},
	})
	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(f.Beds()) != 1 {
		t.Fatalf("expected 1 bed, got %d", len(f.Beds()))
	}
	if _, ok := f.AudioByID(audioID); !ok {
		t.Fatal("expected audio element indexed by id")
	}
}

func TestBuilderRejectsDanglingAudioReference(t *testing.T) {
	b := NewBuilder(SampleRate48k, FrameRate24)
	b.AddBed(BedDefinition{
		MetadataID: b.NextMetadataID(),
		Channels:   []BedChannel{{ChannelID: ChannelL, AudioDataID: 999}},
	})
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for dangling audio_data_id reference")
	}
}

func TestBuilderRejectsDuplicateMetadataID(t *testing.T) {
	b := NewBuilder(SampleRate48k, FrameRate24)
	b.AddBed(BedDefinition{MetadataID: 1, Channels: []BedChannel{{ChannelID: ChannelL}}})
	b.AddBed(BedDefinition{MetadataID: 1, Channels: []BedChannel{{ChannelID: ChannelR}}})
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for duplicate metadata_id")
	}
}
