/*
NAME
  config.go

DESCRIPTION
  config.go implements spec.md §4.F's renderer configuration data
  model and its build-time invariants: unique speaker names/output
  channels/URIs, azimuth/elevation ranges, non-negative downmix
  coefficients, and precomputed non-singular VBAP patch inverses.

  Grounded on revid/config/config.go's Config-struct-plus-constants
  shape, and on original_source/src/lib/renderutils/
  RendererConfigurationFile.{h,cpp}'s data model (RenderSpeaker,
  RenderPatch, name/channel/URI index maps, VBAP speaker set).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package renderconfig implements spec.md §4.F: the declarative text
// renderer configuration (speakers, LFE, downmix, VBAP patches) and
// its build-time validation.
package renderconfig

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// VirtualChannel marks a speaker with no physical output (the cfg
// grammar's "*" channel).
const VirtualChannel = -1

// patchEpsilon is the minimum patch-matrix determinant magnitude
// spec.md §4.F requires for a VBAP patch to be non-singular.
const patchEpsilon = 1e-9

// DownmixTarget is one (target speaker, coefficient) pair of a
// downmix entry.
type DownmixTarget struct {
	TargetName        string
	TargetOutputIndex int
	Coefficient       float64
}

// Speaker is one configured loudspeaker or virtual position.
type Speaker struct {
	Name        string
	Channel     int32 // VirtualChannel (-1) or a non-negative output channel
	OutputIndex int   // renderer output index; -1 for virtual speakers
	Azimuth     float64
	Elevation   float64
	URI         string
	Position    [3]float64 // unit-sphere position, §4.F's (x,y,z)

	// IsVBAP is true once the speaker is used as a vertex in at least
	// one VBAP patch (spec.md §4.F).
	IsVBAP bool

	// Downmix is the L2-normalised downmix vector; DownmixRaw retains
	// the unnormalised coefficients for inspection (spec.md §4.F).
	Downmix    []DownmixTarget
	DownmixRaw []DownmixTarget
}

// Physical reports whether the speaker has a real output channel.
func (s Speaker) Physical() bool { return s.Channel != VirtualChannel }

// Patch is one VBAP triangle: three speaker indices (into
// Config.Speakers) and the precomputed inverse of the 3x3 matrix
// whose columns are the three speakers' unit-sphere positions.
type Patch struct {
	S1, S2, S3 int
	Inverse    *mat.Dense // 3x3, precomputed at build time
}

// Config is a fully validated renderer configuration.
type Config struct {
	Version                   int32
	AuthoringTool             string
	AuthoringToolVersion      string
	RecommendedPracticeVersion string

	Debug, Decorr, IABDecorrEnable, Smooth bool

	Soundfield string

	Speakers         []Speaker // all speakers, physical and virtual
	PhysicalSpeakers []Speaker // the subset with Channel != VirtualChannel

	// LFEIndex is the index into Speakers of the designated LFE
	// speaker, or -1 if none was configured.
	LFEIndex int

	Patches []Patch

	HasBottomHemisphere bool

	nameIndex map[string]int
	chanIndex map[int32]int
	uriIndex  map[string]int
}

// SpeakerByName returns the configured speaker named name.
func (c *Config) SpeakerByName(name string) (Speaker, bool) {
	i, ok := c.nameIndex[name]
	if !ok {
		return Speaker{}, false
	}
	return c.Speakers[i], true
}

// SpeakerByChannel returns the configured speaker at output channel
// ch.
func (c *Config) SpeakerByChannel(ch int32) (Speaker, bool) {
	i, ok := c.chanIndex[ch]
	if !ok {
		return Speaker{}, false
	}
	return c.Speakers[i], true
}

// LFE returns the designated LFE speaker, if any.
func (c *Config) LFE() (Speaker, bool) {
	if c.LFEIndex < 0 {
		return Speaker{}, false
	}
	return c.Speakers[c.LFEIndex], true
}

// position maps (azimuth, elevation) in degrees to a unit-sphere
// position per spec.md §4.F: x = sin θ cos φ, y = cos θ cos φ,
// z = sin φ, each clamped to [-1, 1].
func position(azimuthDeg, elevationDeg float64) [3]float64 {
	theta := azimuthDeg * math.Pi / 180
	phi := elevationDeg * math.Pi / 180
	clamp := func(v float64) float64 {
		if v > 1 {
			return 1
		}
		if v < -1 {
			return -1
		}
		return v
	}
	return [3]float64{
		clamp(math.Sin(theta) * math.Cos(phi)),
		clamp(math.Cos(theta) * math.Cos(phi)),
		clamp(math.Sin(phi)),
	}
}

// Builder incrementally assembles a Config, matching
// RendererConfigurationFile's addSpeaker/addDownmix/addVBAPPatch
// sequence. Patch vertices and downmix sources are resolved as they
// are added; downmix targets and the LFE directive are resolved in
// Build.
type Builder struct {
	cfg              *Config
	rawDownmix       map[string][]DownmixTarget // speaker name -> entries, in M-line order
	lfeSet           bool
	lfeByChannel     bool
	lfeChannel       int32
	lfeName          string
	err              error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		cfg: &Config{
			LFEIndex:  -1,
			nameIndex: map[string]int{},
			chanIndex: map[int32]int{},
			uriIndex:  map[string]int{},
		},
		rawDownmix: map[string][]DownmixTarget{},
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// SetVersion records the cfg-file version (the "V" directive).
func (b *Builder) SetVersion(v int32) *Builder {
	b.cfg.Version = v
	return b
}

// SetAuthoringTool records the "K AUTHTOOL" directive.
func (b *Builder) SetAuthoringTool(tool string) *Builder {
	b.cfg.AuthoringTool = tool
	return b
}

// SetAuthoringToolVersion records the "K AUTHTOOLVERSION" directive.
func (b *Builder) SetAuthoringToolVersion(v string) *Builder {
	b.cfg.AuthoringToolVersion = v
	return b
}

// SetRecommendedPracticeVersion records the "K RPVERSION" directive.
func (b *Builder) SetRecommendedPracticeVersion(v string) *Builder {
	b.cfg.RecommendedPracticeVersion = v
	return b
}

// SetFlags records the "C DEBUG/DECORR/IABDECORR/SMOOTH" directives.
func (b *Builder) SetFlags(debug, decorr, iabDecorr, smooth bool) *Builder {
	b.cfg.Debug = debug
	b.cfg.Decorr = decorr
	b.cfg.IABDecorrEnable = iabDecorr
	b.cfg.Smooth = smooth
	return b
}

// SetSoundfield records the "E" directive's target soundfield URI.
func (b *Builder) SetSoundfield(uri string) *Builder {
	if uri == "" {
		return b.fail(errors.New("renderconfig: soundfield URI must not be empty"))
	}
	b.cfg.Soundfield = uri
	return b
}

// AddSpeaker adds one "S" directive's speaker.
func (b *Builder) AddSpeaker(name string, channel int32, azimuth, elevation float64, uri string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(errors.New("renderconfig: speaker name must not be empty"))
	}
	if channel < VirtualChannel {
		return b.fail(errors.Errorf("renderconfig: invalid output channel %d", channel))
	}
	if azimuth < -360 || azimuth > 360 {
		return b.fail(errors.Errorf("renderconfig: speaker %q azimuth %v out of [-360,360]", name, azimuth))
	}
	if elevation < -90 || elevation > 90 {
		return b.fail(errors.Errorf("renderconfig: speaker %q elevation %v out of [-90,90]", name, elevation))
	}
	if _, dup := b.cfg.nameIndex[name]; dup {
		return b.fail(errors.Errorf("renderconfig: duplicate speaker name %q", name))
	}
	if channel != VirtualChannel {
		if _, dup := b.cfg.chanIndex[channel]; dup {
			return b.fail(errors.Errorf("renderconfig: duplicate output channel %d", channel))
		}
	}
	if uri != "" {
		if _, dup := b.cfg.uriIndex[uri]; dup {
			return b.fail(errors.Errorf("renderconfig: duplicate speaker URI %q", uri))
		}
	}

	outputIndex := -1
	if channel != VirtualChannel {
		outputIndex = len(b.cfg.PhysicalSpeakers)
	}
	s := Speaker{
		Name:        name,
		Channel:     channel,
		OutputIndex: outputIndex,
		Azimuth:     azimuth,
		Elevation:   elevation,
		URI:         uri,
		Position:    position(azimuth, elevation),
	}
	idx := len(b.cfg.Speakers)
	b.cfg.Speakers = append(b.cfg.Speakers, s)
	b.cfg.nameIndex[name] = idx
	if channel != VirtualChannel {
		b.cfg.chanIndex[channel] = idx
		b.cfg.PhysicalSpeakers = append(b.cfg.PhysicalSpeakers, s)
	}
	if uri != "" {
		b.cfg.uriIndex[uri] = idx
	}
	if elevation < 0 {
		b.cfg.HasBottomHemisphere = true
	}
	return b
}

// SetLFEByChannel records the "W <channel>" directive.
func (b *Builder) SetLFEByChannel(channel int32) *Builder {
	b.lfeSet = true
	b.lfeByChannel = true
	b.lfeChannel = channel
	return b
}

// SetLFEByName records the "W <name>" directive.
func (b *Builder) SetLFEByName(name string) *Builder {
	b.lfeSet = true
	b.lfeByChannel = false
	b.lfeName = name
	return b
}

// AddDownmix records one "M" directive: source speaker and its
// ordered list of (target, coefficient) pairs.
func (b *Builder) AddDownmix(source string, targets []DownmixTarget) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.cfg.nameIndex[source]; !ok {
		return b.fail(errors.Errorf("renderconfig: downmix source %q is not a configured speaker", source))
	}
	if len(targets) == 0 {
		return b.fail(errors.Errorf("renderconfig: downmix for %q has no targets", source))
	}
	if _, dup := b.rawDownmix[source]; dup {
		return b.fail(errors.Errorf("renderconfig: speaker %q already has a downmix", source))
	}
	b.rawDownmix[source] = append([]DownmixTarget(nil), targets...)
	return b
}

// AddPatch records one "P" directive: a VBAP triangle of three
// speaker names.
func (b *Builder) AddPatch(name1, name2, name3 string) *Builder {
	if b.err != nil {
		return b
	}
	i1, ok1 := b.cfg.nameIndex[name1]
	i2, ok2 := b.cfg.nameIndex[name2]
	i3, ok3 := b.cfg.nameIndex[name3]
	if !ok1 || !ok2 || !ok3 {
		return b.fail(errors.Errorf("renderconfig: patch (%s,%s,%s) references an unknown speaker", name1, name2, name3))
	}

	m := mat.NewDense(3, 3, nil)
	for row, s := range []Speaker{b.cfg.Speakers[i1], b.cfg.Speakers[i2], b.cfg.Speakers[i3]} {
		m.Set(0, row, s.Position[0])
		m.Set(1, row, s.Position[1])
		m.Set(2, row, s.Position[2])
	}
	if math.Abs(mat.Det(m)) < patchEpsilon {
		return b.fail(errors.Errorf("renderconfig: patch (%s,%s,%s) is singular", name1, name2, name3))
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return b.fail(errors.Wrapf(err, "renderconfig: patch (%s,%s,%s) inverse", name1, name2, name3))
	}
	b.cfg.Patches = append(b.cfg.Patches, Patch{S1: i1, S2: i2, S3: i3, Inverse: &inv})
	b.cfg.Speakers[i1].IsVBAP = true
	b.cfg.Speakers[i2].IsVBAP = true
	b.cfg.Speakers[i3].IsVBAP = true
	return b
}

// Build finalises the Config: resolves the LFE directive, resolves
// and L2-normalises every downmix, and returns any error accumulated
// during incremental construction.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.lfeSet {
		var idx int
		var ok bool
		if b.lfeByChannel {
			idx, ok = b.cfg.chanIndex[b.lfeChannel]
		} else {
			idx, ok = b.cfg.nameIndex[b.lfeName]
		}
		if !ok {
			return nil, errors.New("renderconfig: LFE directive references an unknown speaker")
		}
		b.cfg.LFEIndex = idx
	}

	for source, targets := range b.rawDownmix {
		si := b.cfg.nameIndex[source]
		raw := make([]DownmixTarget, 0, len(targets))
		for _, t := range targets {
			ti, ok := b.cfg.nameIndex[t.TargetName]
			if !ok {
				return nil, errors.Errorf("renderconfig: downmix target %q is not a configured speaker", t.TargetName)
			}
			target := b.cfg.Speakers[ti]
			if !target.Physical() {
				return nil, errors.Errorf("renderconfig: downmix target %q must not be virtual", t.TargetName)
			}
			if t.Coefficient < 0 {
				return nil, errors.Errorf("renderconfig: downmix coefficient for %q must be non-negative, got %v", t.TargetName, t.Coefficient)
			}
			raw = append(raw, DownmixTarget{TargetName: t.TargetName, TargetOutputIndex: target.OutputIndex, Coefficient: t.Coefficient})
		}
		b.cfg.Speakers[si].DownmixRaw = raw
		b.cfg.Speakers[si].Downmix = normalizeDownmix(raw)
		if b.cfg.Speakers[si].Physical() {
			b.cfg.PhysicalSpeakers[b.cfg.Speakers[si].OutputIndex] = b.cfg.Speakers[si]
		}
	}

	return b.cfg, nil
}

// normalizeDownmix L2-normalises a downmix's coefficients (spec.md
// §4.F: "Downmix vectors are L2-normalised on commit").
func normalizeDownmix(raw []DownmixTarget) []DownmixTarget {
	var sumSq float64
	for _, t := range raw {
		sumSq += t.Coefficient * t.Coefficient
	}
	if sumSq == 0 {
		return append([]DownmixTarget(nil), raw...)
	}
	norm := math.Sqrt(sumSq)
	out := make([]DownmixTarget, len(raw))
	for i, t := range raw {
		out[i] = DownmixTarget{TargetName: t.TargetName, TargetOutputIndex: t.TargetOutputIndex, Coefficient: t.Coefficient / norm}
	}
	return out
}
