/*
NAME
  config_test.go

DESCRIPTION
  Tests for renderconfig's build-time invariants and the two-pass
  text-grammar parser.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package renderconfig

import (
	"strings"
	"testing"
)

func TestAddSpeakerDuplicateName(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("L", 0, -30, 0, "").
		AddSpeaker("L", 1, 30, 0, "").
		Build()
	if err == nil {
		t.Fatal("expected duplicate name error, got nil")
	}
}

func TestAddSpeakerDuplicateChannel(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("L", 0, -30, 0, "").
		AddSpeaker("R", 0, 30, 0, "").
		Build()
	if err == nil {
		t.Fatal("expected duplicate channel error, got nil")
	}
}

func TestAddSpeakerDuplicateURI(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("L", 0, -30, 0, "urn:a").
		AddSpeaker("R", 1, 30, 0, "urn:a").
		Build()
	if err == nil {
		t.Fatal("expected duplicate URI error, got nil")
	}
}

func TestAddSpeakerAzimuthRange(t *testing.T) {
	_, err := NewBuilder().AddSpeaker("L", 0, 361, 0, "").Build()
	if err == nil {
		t.Fatal("expected azimuth range error, got nil")
	}
}

func TestAddSpeakerElevationRange(t *testing.T) {
	_, err := NewBuilder().AddSpeaker("L", 0, 0, 91, "").Build()
	if err == nil {
		t.Fatal("expected elevation range error, got nil")
	}
}

func TestAddSpeakerVirtualChannel(t *testing.T) {
	cfg, err := NewBuilder().
		AddSpeaker("Obj", VirtualChannel, 0, 0, "").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := cfg.SpeakerByName("Obj")
	if !ok {
		t.Fatal("speaker Obj not found")
	}
	if s.Physical() {
		t.Fatal("virtual speaker reported as physical")
	}
	if len(cfg.PhysicalSpeakers) != 0 {
		t.Fatalf("expected 0 physical speakers, got %d", len(cfg.PhysicalSpeakers))
	}
}

func TestDownmixRejectsVirtualTarget(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("Src", 0, 0, 0, "").
		AddSpeaker("Obj", VirtualChannel, 10, 0, "").
		AddDownmix("Src", []DownmixTarget{{TargetName: "Obj", Coefficient: 1}}).
		Build()
	if err == nil {
		t.Fatal("expected error downmixing onto a virtual speaker")
	}
}

func TestDownmixRejectsNegativeCoefficient(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("Src", 0, 0, 0, "").
		AddSpeaker("Dst", 1, 10, 0, "").
		AddDownmix("Src", []DownmixTarget{{TargetName: "Dst", Coefficient: -1}}).
		Build()
	if err == nil {
		t.Fatal("expected error for negative downmix coefficient")
	}
}

func TestDownmixNormalization(t *testing.T) {
	cfg, err := NewBuilder().
		AddSpeaker("Src", 0, 0, 0, "").
		AddSpeaker("A", 1, 10, 0, "").
		AddSpeaker("B", 2, -10, 0, "").
		AddDownmix("Src", []DownmixTarget{
			{TargetName: "A", Coefficient: 3},
			{TargetName: "B", Coefficient: 4},
		}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ := cfg.SpeakerByName("Src")
	var sumSq float64
	for _, t := range s.Downmix {
		sumSq += t.Coefficient * t.Coefficient
	}
	if sumSq < 0.999 || sumSq > 1.001 {
		t.Fatalf("expected unit-norm downmix, got sum-of-squares %v", sumSq)
	}
	if s.DownmixRaw[0].Coefficient != 3 || s.DownmixRaw[1].Coefficient != 4 {
		t.Fatalf("raw coefficients not preserved: %+v", s.DownmixRaw)
	}
}

func TestAddPatchSingular(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("A", 0, 0, 0, "").
		AddSpeaker("B", 1, 0, 0, "").
		AddSpeaker("C", 2, 0, 0, "").
		AddPatch("A", "B", "C").
		Build()
	if err == nil {
		t.Fatal("expected singular-patch error for three coincident speakers")
	}
}

func TestAddPatchMarksVBAP(t *testing.T) {
	cfg, err := NewBuilder().
		AddSpeaker("A", 0, 0, 0, "").
		AddSpeaker("B", 1, 120, 0, "").
		AddSpeaker("C", 2, -120, 0, "").
		AddSpeaker("Top", 3, 0, 90, "").
		AddPatch("A", "B", "Top").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ := cfg.SpeakerByName("A")
	if !s.IsVBAP {
		t.Fatal("expected speaker A to be marked IsVBAP")
	}
	c, _ := cfg.SpeakerByName("C")
	if c.IsVBAP {
		t.Fatal("speaker C should not be marked IsVBAP")
	}
	if cfg.Patches[0].Inverse == nil {
		t.Fatal("expected a precomputed patch inverse")
	}
}

func TestAddPatchUnknownSpeaker(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("A", 0, 0, 0, "").
		AddPatch("A", "B", "C").
		Build()
	if err == nil {
		t.Fatal("expected error referencing unknown patch speaker")
	}
}

func TestLFEByChannel(t *testing.T) {
	cfg, err := NewBuilder().
		AddSpeaker("Sub", 3, 0, -90, "").
		SetLFEByChannel(3).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lfe, ok := cfg.LFE()
	if !ok || lfe.Name != "Sub" {
		t.Fatalf("expected LFE speaker Sub, got %+v ok=%v", lfe, ok)
	}
}

func TestLFEUnknownReference(t *testing.T) {
	_, err := NewBuilder().
		AddSpeaker("Sub", 3, 0, -90, "").
		SetLFEByName("NoSuchSpeaker").
		Build()
	if err == nil {
		t.Fatal("expected error for LFE referencing unknown speaker")
	}
}

const sampleConfig = `
# sample renderer configuration
V 1
C SMOOTH 1
C DECORR 0
K AUTHTOOL testtool
K AUTHTOOLVERSION 1.0
E urn:smpte:ul:soundfield
S L 0 -30 0
S R 1 30 0
S C 2 0 0
S LFE 3 0 -90 urn:smpte:ul:lfe
S Top 4 0 90

W LFE
M L C 0.5
P L R Top
`

func TestParseSampleConfig(t *testing.T) {
	cfg, err := Parse(sampleConfig)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected version 1, got %d", cfg.Version)
	}
	if !cfg.Smooth || cfg.Decorr {
		t.Fatalf("flags not parsed correctly: smooth=%v decorr=%v", cfg.Smooth, cfg.Decorr)
	}
	if cfg.AuthoringTool != "testtool" || cfg.AuthoringToolVersion != "1.0" {
		t.Fatalf("authoring metadata not parsed: %+v %+v", cfg.AuthoringTool, cfg.AuthoringToolVersion)
	}
	if cfg.Soundfield != "urn:smpte:ul:soundfield" {
		t.Fatalf("unexpected soundfield %q", cfg.Soundfield)
	}
	if len(cfg.Speakers) != 5 {
		t.Fatalf("expected 5 speakers, got %d", len(cfg.Speakers))
	}
	lfe, ok := cfg.LFE()
	if !ok || lfe.Name != "LFE" {
		t.Fatalf("expected LFE speaker, got %+v ok=%v", lfe, ok)
	}
	l, _ := cfg.SpeakerByName("L")
	if len(l.Downmix) != 1 || l.Downmix[0].TargetName != "C" {
		t.Fatalf("unexpected downmix for L: %+v", l.Downmix)
	}
	if len(cfg.Patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(cfg.Patches))
	}
}

func TestParseMalformedDirective(t *testing.T) {
	_, err := Parse("S OnlyName\n")
	if err == nil {
		t.Fatal("expected error for malformed S directive")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected error to reference line 1, got %q", err.Error())
	}
}

func TestParseUnknownDirective(t *testing.T) {
	_, err := Parse("Z 1 2 3\n")
	if err == nil {
		t.Fatal("expected error for unknown directive")
	}
	if !strings.Contains(err.Error(), "line 1") || !strings.Contains(err.Error(), `"Z"`) {
		t.Fatalf("expected error to name line 1 and directive \"Z\", got %q", err.Error())
	}
}

func TestParseUnknownDirectiveOnLaterLine(t *testing.T) {
	_, err := Parse("S L 0 -30 0\nQ L\n")
	if err == nil {
		t.Fatal("expected error for unknown directive on line 2")
	}
	if !strings.Contains(err.Error(), "line 2") || !strings.Contains(err.Error(), `"Q"`) {
		t.Fatalf("expected error to name line 2 and directive \"Q\", got %q", err.Error())
	}
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	cfg, err := Parse("# just a comment\n\n   \nV 2\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Version != 2 {
		t.Fatalf("expected version 2, got %d", cfg.Version)
	}
}
