/*
NAME
  vbap_test.go

DESCRIPTION
  Tests for patch selection, zone gain, snap and the VBAP energy
  property of spec.md §8 property 8.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package vbap

import (
	"math"
	"testing"

	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/renderconfig"
	"pgregory.net/rapid"
)

// octahedronConfig returns a renderconfig.Config with 6 speakers on
// the coordinate axes and the 8 triangular patches of an octahedron,
// which together cover the entire unit sphere with no gaps.
func octahedronConfig(t testing.TB) *renderconfig.Config {
	t.Helper()
	b := renderconfig.NewBuilder().
		AddSpeaker("Front", 0, 0, 0, "").
		AddSpeaker("Right", 1, 90, 0, "").
		AddSpeaker("Rear", 2, 180, 0, "").
		AddSpeaker("Left", 3, -90, 0, "").
		AddSpeaker("Top", 4, 0, 90, "").
		AddSpeaker("Bottom", 5, 0, -90, "")

	horiz := []string{"Front", "Right", "Rear", "Left"}
	for i := 0; i < 4; i++ {
		a, c := horiz[i], horiz[(i+1)%4]
		b = b.AddPatch(a, c, "Top")
	}
	for i := 0; i < 4; i++ {
		a, c := horiz[i], horiz[(i+1)%4]
		b = b.AddPatch(a, c, "Bottom")
	}

	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("octahedronConfig: %v", err)
	}
	return cfg
}

func TestPanEnergyPreservation(t *testing.T) {
	cfg := octahedronConfig(t)
	e := New(cfg)

	rapid.Check(t, func(rt *rapid.T) {
		v := [3]float64{
			rapid.Float64Range(-1, 1).Draw(rt, "x"),
			rapid.Float64Range(-1, 1).Draw(rt, "y"),
			rapid.Float64Range(-1, 1).Draw(rt, "z"),
		}
		n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if n < 1e-9 {
			return
		}
		dir := [3]float64{v[0] / n, v[1] / n, v[2] / n}

		gains, err := e.Pan(dir)
		if err != nil {
			rt.Fatalf("Pan: %v", err)
		}
		var sumSq float64
		for _, g := range gains {
			sumSq += g.Gain * g.Gain
		}
		if math.Abs(sumSq-1.0) > 1e-6 {
			rt.Fatalf("sum of squared gains = %v, want 1.0 (dir=%v gains=%+v)", sumSq, dir, gains)
		}
	})
}

func TestPanFrontSpeakerUnityAtItsOwnPosition(t *testing.T) {
	cfg := octahedronConfig(t)
	e := New(cfg)
	front, ok := cfg.SpeakerByName("Front")
	if !ok {
		t.Fatal("Front speaker not found")
	}

	gains, err := e.Pan(front.Position)
	if err != nil {
		t.Fatalf("Pan: %v", err)
	}
	for _, g := range gains {
		if g.OutputIndex == front.OutputIndex {
			if math.Abs(g.Gain-1.0) > 1e-9 {
				t.Errorf("Front gain = %v, want ~1.0", g.Gain)
			}
		} else if g.Gain > 1e-9 {
			t.Errorf("unexpected non-zero gain %v at output %d", g.Gain, g.OutputIndex)
		}
	}
}

func TestPanNoPatchesError(t *testing.T) {
	cfg, err := renderconfig.NewBuilder().
		AddSpeaker("L", 0, -30, 0, "").
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	e := New(cfg)
	if _, err := e.Pan([3]float64{0, 1, 0}); err == nil {
		t.Fatal("expected NoVBAPPatch error with no patches configured")
	}
}

func TestApplyZoneGainSilencesZeroZone(t *testing.T) {
	gains := []SpeakerGain{{OutputIndex: 0, Gain: 0.7}, {OutputIndex: 1, Gain: 0.7}}
	zg := frame.ZoneGain9{Enabled: true}
	zg.Zones[0] = frame.SilentGain
	zg.Zones[1] = frame.UnityGain

	out := ApplyZoneGain(gains, zg, func(outputIndex int) int { return outputIndex })
	for _, g := range out {
		if g.OutputIndex == 0 && g.Gain != 0 {
			t.Errorf("expected output 0 silenced, got %v", g.Gain)
		}
		if g.OutputIndex == 1 && math.Abs(g.Gain-1.0) > 1e-9 {
			t.Errorf("expected output 1 at unity after re-normalisation, got %v", g.Gain)
		}
	}
}

func TestSnapWithinTolerance(t *testing.T) {
	cfg := octahedronConfig(t)
	e := New(cfg)
	front, _ := cfg.SpeakerByName("Front")

	snap := frame.Snap{Present: true, ToleranceExists: true, Tolerance: 4095}
	g, ok := e.Snap(front.Position, snap)
	if !ok {
		t.Fatal("expected snap to trigger at the speaker's own position")
	}
	if g.OutputIndex != front.OutputIndex || g.Gain != 1.0 {
		t.Errorf("unexpected snap result %+v", g)
	}
}

func TestSnapAbsentWhenNotPresent(t *testing.T) {
	cfg := octahedronConfig(t)
	e := New(cfg)
	front, _ := cfg.SpeakerByName("Front")

	_, ok := e.Snap(front.Position, frame.Snap{Present: false})
	if ok {
		t.Fatal("expected no snap when Present is false")
	}
}
