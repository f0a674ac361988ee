/*
NAME
  pipeline_test.go

DESCRIPTION
  Tests for the concrete end-to-end scenarios of spec.md §8 (S1-S3)
  and the §4.H failure-semantics table's warning cases.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"math"
	"testing"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/renderconfig"
)

// stereoConfig is a minimal 1-patch configuration with no LFE speaker:
// L at -30 degrees azimuth, R at +30, C at 0 and Top overhead. L, C
// and R all lie in the horizontal plane, so the patch covering L takes
// Top as its third vertex to stay non-singular.
func stereoConfig(t testing.TB) *renderconfig.Config {
	t.Helper()
	cfg, err := renderconfig.NewBuilder().
		AddSpeaker("L", 0, -30, 0, "").
		AddSpeaker("R", 1, 30, 0, "").
		AddSpeaker("C", 2, 0, 0, "").
		AddSpeaker("Top", 3, 0, 90, "").
		AddPatch("L", "R", "Top").
		Build()
	if err != nil {
		t.Fatalf("stereoConfig: %v", err)
	}
	return cfg
}

func subBlocks(n int, sb frame.ObjectSubBlock) []frame.ObjectSubBlock {
	out := make([]frame.ObjectSubBlock, n)
	for i := range out {
		out[i] = sb
	}
	return out
}

// S1: a silent object (no audio reference) at the cube centre
// produces all-zero output and no warnings.
func TestRenderSilentObject(t *testing.T) {
	cfg := stereoConfig(t)
	p := NewPipeline(cfg, nil)

	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate48)
	f.Add(&frame.ObjectDefinition{
		MetadataID:  1,
		AudioDataID: 0,
		SubBlocks: subBlocks(4, frame.ObjectSubBlock{
			PanInfoExists: true,
			Gain:          frame.UnityGain,
			Position:      frame.Position{X: 0.5, Y: 0.5, Z: 0.5},
		}),
	})

	out, warnings, err := p.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	for ch, row := range out.Channels {
		for i, v := range row {
			if v != 0 {
				t.Fatalf("channel %d sample %d = %v, want 0", ch, i, v)
			}
		}
	}
	if warnings.Total() != 0 {
		t.Errorf("expected no warnings, got %+v", warnings.Snapshot())
	}
}

// S2: a unity-gain object exactly at speaker L's position routes the
// decoded PCM entirely to L, with all other channels at zero.
func TestRenderObjectAtSpeakerPosition(t *testing.T) {
	cfg := stereoConfig(t)
	l, ok := cfg.SpeakerByName("L")
	if !ok {
		t.Fatal("L speaker not found")
	}
	p := NewPipeline(cfg, nil)

	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate48)
	samples := []int32{1000, 2000, 3000, 4000}
	f.Add(frame.AudioDataPCM{AudioDataID: 7, Samples: samples})
	f.Add(&frame.ObjectDefinition{
		MetadataID:  1,
		AudioDataID: 7,
		SubBlocks: subBlocks(4, frame.ObjectSubBlock{
			PanInfoExists: true,
			Gain:          frame.UnityGain,
			// Unit-cube point that vbap.CubeToDirection maps onto L.
			Position: frame.Position{
				X: (l.Position[0] + 1) / 2,
				Y: (l.Position[1] + 1) / 2,
				Z: (l.Position[2] + 1) / 2,
			},
		}),
	})

	out, warnings, err := p.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if warnings.Total() != 0 {
		t.Errorf("expected no warnings, got %+v", warnings.Snapshot())
	}
	row := out.Channels[l.OutputIndex]
	for i, v := range row {
		want := 0.0
		if i < len(samples) {
			want = float64(samples[i])
		}
		if math.Abs(v-want) > 1e-6 {
			t.Errorf("L sample %d = %v, want %v", i, v, want)
		}
	}
	for ch, r := range out.Channels {
		if ch == l.OutputIndex {
			continue
		}
		for i, v := range r {
			if math.Abs(v) > 1e-6 {
				t.Errorf("channel %d sample %d = %v, want ~0", ch, i, v)
			}
		}
	}
}

// S3: a 5.1-style bed with an LFE channel, rendered against a
// configuration with no LFE speaker, produces exactly one
// NoLFEForBedLFE warning and leaves the non-LFE channels intact.
func TestRenderBedLFEWithNoLFESpeaker(t *testing.T) {
	cfg := stereoConfig(t) // has L, R, C but no LFE
	p := NewPipeline(cfg, nil)

	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate48)
	lSamples := []int32{100, 200, 300, 400}
	lfeSamples := []int32{9000, 9000, 9000, 9000}
	f.Add(frame.AudioDataPCM{AudioDataID: 1, Samples: lSamples})
	f.Add(frame.AudioDataPCM{AudioDataID: 2, Samples: lfeSamples})
	f.Add(&frame.BedDefinition{
		MetadataID: 1,
		UseCase:    frame.UseCase51,
		Channels: []frame.BedChannel{
			{ChannelID: frame.ChannelL, AudioDataID: 1, Gain: frame.UnityGain},
			{ChannelID: frame.ChannelLFE, AudioDataID: 2, Gain: frame.UnityGain},
		},
	})

	out, warnings, err := p.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := warnings.Count(iaberr.KindNoLFEForBedLFE); got != 1 {
		t.Errorf("NoLFEForBedLFE count = %d, want 1", got)
	}

	l, _ := cfg.SpeakerByName("L")
	row := out.Channels[l.OutputIndex]
	for i, v := range row {
		want := 0.0
		if i < len(lSamples) {
			want = float64(lSamples[i])
		}
		if math.Abs(v-want) > 1e-6 {
			t.Errorf("L sample %d = %v, want %v", i, v, want)
		}
	}
}

// An unrecognised bed channel id is dropped with a warning rather
// than aborting the frame.
func TestRenderUnknownBedChannelDropped(t *testing.T) {
	cfg := stereoConfig(t)
	p := NewPipeline(cfg, nil)

	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate48)
	f.Add(frame.AudioDataPCM{AudioDataID: 1, Samples: []int32{1, 2, 3, 4}})
	f.Add(&frame.BedDefinition{
		MetadataID: 1,
		Channels: []frame.BedChannel{
			{ChannelID: frame.ChannelUnknown, AudioDataID: 1, Gain: frame.UnityGain},
		},
	})

	out, warnings, err := p.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := warnings.Count(iaberr.KindUnknownElement); got != 1 {
		t.Errorf("KindUnknownElement count = %d, want 1", got)
	}
	for ch, row := range out.Channels {
		for i, v := range row {
			if v != 0 {
				t.Errorf("channel %d sample %d = %v, want 0 (dropped channel)", ch, i, v)
			}
		}
	}
}

// A dangling audio reference (no matching Audio Data element in the
// frame) warns and is treated as silent rather than aborting.
func TestRenderMissingAudioReference(t *testing.T) {
	cfg := stereoConfig(t)
	p := NewPipeline(cfg, nil)

	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate48)
	f.Add(&frame.BedDefinition{
		MetadataID: 1,
		Channels: []frame.BedChannel{
			{ChannelID: frame.ChannelL, AudioDataID: 42, Gain: frame.UnityGain},
		},
	})

	out, warnings, err := p.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := warnings.Count(iaberr.KindFrameStructure); got != 1 {
		t.Errorf("KindFrameStructure count = %d, want 1", got)
	}
	l, _ := cfg.SpeakerByName("L")
	for i, v := range out.Channels[l.OutputIndex] {
		if v != 0 {
			t.Errorf("L sample %d = %v, want 0 (missing reference treated as silent)", i, v)
		}
	}
}

// A DLC decode failure silences that asset and warns, without
// aborting the frame.
func TestRenderDLCDecodeFailureSilencesAsset(t *testing.T) {
	cfg := stereoConfig(t)
	p := NewPipeline(cfg, nil)

	f := frame.NewFrame(frame.SampleRate48k, frame.FrameRate48)
	f.Add(frame.AudioDataDLC{AudioDataID: 1, SampleRate: frame.SampleRate48k, Payload: []byte{0xFF, 0xFF, 0xFF}})
	f.Add(&frame.BedDefinition{
		MetadataID: 1,
		Channels: []frame.BedChannel{
			{ChannelID: frame.ChannelL, AudioDataID: 1, Gain: frame.UnityGain},
		},
	})

	out, warnings, err := p.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := warnings.Count(iaberr.KindDLCDecode); got != 1 {
		t.Errorf("KindDLCDecode count = %d, want 1", got)
	}
	l, _ := cfg.SpeakerByName("L")
	for i, v := range out.Channels[l.OutputIndex] {
		if v != 0 {
			t.Errorf("L sample %d = %v, want 0 (decode failure silences asset)", i, v)
		}
	}
}
