/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go implements spec.md §4.H's single-threaded renderer
  pipeline: decode every audio element, mix Bed Channels (with LFE and
  downmix handling), pan and ramp-mix every Object Sub-Block via
  package vbap, and apply any trailing speaker downmixes. Output
  samples are left unclamped (spec.md §4.H point 6: "downstream
  consumer is 24-bit writer with its own clip").

  Grounded on revid/pipeline.go's stage-setup pattern (a long-lived
  struct over immutable configuration, one method per frame) and
  codec/pcm/pcm.go's Buffer/BufferFormat pair for the output shape.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package render implements spec.md §4.H: the single-threaded
// renderer pipeline that walks a frame.Frame, decodes its audio
// elements, and produces one float buffer per configured physical
// speaker.
package render

import (
	"github.com/ausocean/iab/dlc"
	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/iaberr"
	"github.com/ausocean/iab/renderconfig"
	"github.com/ausocean/iab/vbap"
	"github.com/ausocean/utils/logging"
	"github.com/go-audio/audio"
)

// Output is one frame's rendered result: one float64 row per physical
// speaker output index, each SampleCount long. Channels is the mixing
// surface; FloatBuffer interleaves it into the go-audio/audio shape a
// downstream writer expects.
type Output struct {
	Channels    [][]float64
	SampleCount int
}

// FloatBuffer interleaves out's per-speaker rows into a single
// *audio.FloatBuffer, the buffer type a WAV or device-output writer
// downstream of this module would consume (spec.md §1 lists both as
// out-of-scope external collaborators; this module stops at the
// buffer boundary).
func (out *Output) FloatBuffer(sampleRate int) *audio.FloatBuffer {
	numChans := len(out.Channels)
	data := make([]float64, out.SampleCount*numChans)
	for ch, row := range out.Channels {
		for i, v := range row {
			data[i*numChans+ch] = v
		}
	}
	return &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
		Data:   data,
	}
}

// Pipeline renders frame.Frame trees against a fixed renderconfig.Config.
// A Pipeline holds no per-frame state and is safe for concurrent use
// across frames (spec.md §5: "configuration is immutable for the
// renderer's lifetime"); rendermt builds its worker pool on top of it.
type Pipeline struct {
	cfg    *renderconfig.Config
	engine *vbap.Engine

	// OutputSampleRate is the renderer's fixed output rate. When a
	// frame's audio is 96 kHz and this is 48 kHz, only the embedded
	// 48 kHz DLC layer is decoded and frame_sample_count is halved
	// accordingly (spec.md §4.H "96 kHz sample-rate case").
	OutputSampleRate frame.SampleRate

	Logger logging.Logger
}

// NewPipeline returns a Pipeline over cfg, defaulting to a 48 kHz
// output rate.
func NewPipeline(cfg *renderconfig.Config, logger logging.Logger) *Pipeline {
	return &Pipeline{
		cfg:              cfg,
		engine:           vbap.New(cfg),
		OutputSampleRate: frame.SampleRate48k,
		Logger:           logger,
	}
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.Logger == nil {
		return
	}
	p.Logger.Debug(msg, args...)
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.Logger == nil {
		return
	}
	p.Logger.Warning(msg, args...)
}

// Config returns the pipeline's renderconfig.Config, letting
// rendermt's scheduler size its per-job scratch outputs without
// duplicating configuration state.
func (p *Pipeline) Config() *renderconfig.Config { return p.cfg }

// RenderFrame renders f against the pipeline's configuration,
// returning the output buffers and a warning accumulator (spec.md §7:
// "the surface API exposes total counts"). A non-nil error is always
// fatal (spec.md §4.H point 6's failure semantics); every other
// failure mode is folded into warnings and the corresponding
// contribution is dropped or silenced.
func (p *Pipeline) RenderFrame(f *frame.Frame) (*Output, *iaberr.Warnings, error) {
	warnings := &iaberr.Warnings{}

	sampleCount := frame.SampleCount(p.OutputSampleRate, f.FrameRate)
	out := &Output{
		Channels:    make([][]float64, len(p.cfg.PhysicalSpeakers)),
		SampleCount: sampleCount,
	}
	for i := range out.Channels {
		out.Channels[i] = make([]float64, sampleCount)
	}

	pcm := p.decodeAudio(f, sampleCount, warnings)

	for _, bed := range f.Beds() {
		p.RenderBedInto(bed, pcm, out, warnings)
	}
	for _, obj := range f.Objects() {
		p.RenderObjectInto(obj, pcm, out, warnings)
	}

	p.ApplyTrailingDownmix(out)

	return out, warnings, nil
}

// ApplyTrailingDownmix applies spec.md §4.H point 5: downmixes for
// any physical speaker that also declares one, applied to the final
// per-speaker content after all beds and objects are mixed. Exported
// so rendermt's scheduler can apply it once, on the caller's thread,
// after its per-job scratch outputs are reduced.
func (p *Pipeline) ApplyTrailingDownmix(out *Output) {
	for _, s := range p.cfg.PhysicalSpeakers {
		if len(s.Downmix) == 0 {
			continue
		}
		signal := out.Channels[s.OutputIndex]
		applyDownmix(out.Channels, s.Downmix, signal, 0, out.SampleCount)
	}
}

// DecodeResult is one audio element's decode outcome, keyed by
// audio_data_id.
type DecodeResult struct {
	ID     uint32
	Signal []float64
	OK     bool
}

// DecodeElement decodes a single Audio Data DLC/PCM element, the unit
// of work rendermt's decode-queue stage submits to the pool.
func (p *Pipeline) DecodeElement(e frame.Element, sampleCount int, warnings *iaberr.Warnings) DecodeResult {
	pcm := make(map[uint32][]float64, 1)
	switch v := e.(type) {
	case frame.AudioDataDLC:
		p.decodeOne(v, sampleCount, pcm, warnings)
		sig, ok := pcm[v.AudioDataID]
		return DecodeResult{ID: v.AudioDataID, Signal: sig, OK: ok}
	case *frame.AudioDataDLC:
		p.decodeOne(*v, sampleCount, pcm, warnings)
		sig, ok := pcm[v.AudioDataID]
		return DecodeResult{ID: v.AudioDataID, Signal: sig, OK: ok}
	case frame.AudioDataPCM:
		return DecodeResult{ID: v.AudioDataID, Signal: toFloat64(v.Samples), OK: true}
	case *frame.AudioDataPCM:
		return DecodeResult{ID: v.AudioDataID, Signal: toFloat64(v.Samples), OK: true}
	default:
		return DecodeResult{}
	}
}

// decodeAudio invokes package dlc on every Audio Data DLC element and
// converts every Audio Data PCM element, producing a float64 buffer
// per audio_data_id. A DLC decode failure warns and that asset is
// left out of the map, so any bed/object referencing it silently
// resolves to a zero buffer.
func (p *Pipeline) decodeAudio(f *frame.Frame, sampleCount int, warnings *iaberr.Warnings) map[uint32][]float64 {
	pcm := make(map[uint32][]float64)
	for _, e := range f.Elements {
		switch v := e.(type) {
		case frame.AudioDataDLC:
			p.decodeOne(v, sampleCount, pcm, warnings)
		case *frame.AudioDataDLC:
			p.decodeOne(*v, sampleCount, pcm, warnings)
		case frame.AudioDataPCM:
			pcm[v.AudioDataID] = toFloat64(v.Samples)
		case *frame.AudioDataPCM:
			pcm[v.AudioDataID] = toFloat64(v.Samples)
		}
	}
	return pcm
}

func (p *Pipeline) decodeOne(a frame.AudioDataDLC, sampleCount int, pcm map[uint32][]float64, warnings *iaberr.Warnings) {
	var samples []int32
	var err error
	if a.SampleRate == frame.SampleRate96k && p.OutputSampleRate == frame.SampleRate48k {
		samples, err = dlc.Decode48Only(a.Payload)
	} else {
		samples, _, err = dlc.Decode(a.Payload)
	}
	if err != nil {
		warnings.Add(iaberr.KindDLCDecode)
		p.warn("render: DLC decode failed, asset silenced", "audio_data_id", a.AudioDataID, "error", err.Error())
		return
	}
	pcm[a.AudioDataID] = toFloat64(samples)
}

func toFloat64(samples []int32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}

// silentBuffer returns n zero samples, the content of any missing
// audio reference (spec.md §4.H failure semantics: "Missing audio
// reference: warning, treat as silent").
func silentBuffer(n int) []float64 { return make([]float64, n) }

func (p *Pipeline) resolveSignal(audioID uint32, pcm map[uint32][]float64, sampleCount int, warnings *iaberr.Warnings) []float64 {
	if audioID == 0 {
		return silentBuffer(sampleCount)
	}
	sig, ok := pcm[audioID]
	if !ok {
		warnings.Add(iaberr.KindFrameStructure)
		p.warn("render: missing audio reference, treated as silent", "audio_data_id", audioID)
		return silentBuffer(sampleCount)
	}
	return sig
}

// RenderBedInto mixes bed's channels (and any nested beds / remap)
// into out per spec.md §4.H point 3. Exported so rendermt's scheduler
// can run it as a per-worker task against a disjoint scratch Output.
func (p *Pipeline) RenderBedInto(bed *frame.BedDefinition, pcm map[uint32][]float64, out *Output, warnings *iaberr.Warnings) {
	for _, ch := range bed.Channels {
		p.renderBedChannel(ch, pcm, out, warnings)
	}
	if bed.Remap != nil {
		p.renderBedRemap(bed, bed.Remap, pcm, out, warnings)
	}
	for i := range bed.Nested {
		p.RenderBedInto(&bed.Nested[i], pcm, out, warnings)
	}
}

func (p *Pipeline) renderBedChannel(ch frame.BedChannel, pcm map[uint32][]float64, out *Output, warnings *iaberr.Warnings) {
	if !ch.ChannelID.Recognised() {
		warnings.Add(iaberr.KindUnknownElement)
		p.warn("render: unrecognised bed channel id, dropped", "channel_id", ch.ChannelID)
		return
	}

	signal := p.resolveSignal(ch.AudioDataID, pcm, out.SampleCount, warnings)
	gain := ch.Gain.Value()

	var speaker renderconfig.Speaker
	var haveSpeaker bool
	if ch.ChannelID == frame.ChannelLFE {
		lfe, ok := p.cfg.LFE()
		if !ok {
			warnings.Add(iaberr.KindNoLFEForBedLFE)
			p.warn("render: bed has LFE channel but configuration has no LFE speaker")
			return
		}
		speaker, haveSpeaker = lfe, true
	} else {
		speaker, haveSpeaker = p.cfg.SpeakerByName(ch.ChannelID.String())
		if !haveSpeaker {
			warnings.Add(iaberr.KindRendererConfig)
			p.debug("render: no configured speaker for bed channel, dropped", "channel_id", ch.ChannelID)
			return
		}
	}

	scaled := scaleBuffer(signal, gain)
	if speaker.Physical() {
		row := out.Channels[speaker.OutputIndex]
		for i := 0; i < len(scaled) && i < len(row); i++ {
			row[i] += scaled[i]
		}
	}
	if len(speaker.Downmix) > 0 {
		applyDownmix(out.Channels, speaker.Downmix, scaled, 0, out.SampleCount)
	}
}

func (p *Pipeline) renderBedRemap(bed *frame.BedDefinition, remap *frame.BedRemap, pcm map[uint32][]float64, out *Output, warnings *iaberr.Warnings) {
	sourceAudio := make(map[frame.ChannelID]uint32, len(bed.Channels))
	sourceGain := make(map[frame.ChannelID]frame.Gain, len(bed.Channels))
	for _, ch := range bed.Channels {
		sourceAudio[ch.ChannelID] = ch.AudioDataID
		sourceGain[ch.ChannelID] = ch.Gain
	}
	for _, entry := range remap.Entries {
		audioID, ok := sourceAudio[entry.Source]
		if !ok {
			continue
		}
		signal := p.resolveSignal(audioID, pcm, out.SampleCount, warnings)
		signal = scaleBuffer(signal, sourceGain[entry.Source].Value())
		for _, dest := range entry.Destinations {
			speaker, ok := p.cfg.SpeakerByName(dest.Channel.String())
			if !ok || !speaker.Physical() {
				continue
			}
			row := out.Channels[speaker.OutputIndex]
			g := dest.Gain.Value()
			for i := 0; i < len(signal) && i < len(row); i++ {
				row[i] += g * signal[i]
			}
		}
	}
}

func scaleBuffer(signal []float64, gain float64) []float64 {
	out := make([]float64, len(signal))
	ops.scale(out, signal, gain)
	return out
}

// RenderObjectInto pans and ramp-mixes every sub-block of obj into
// out, per spec.md §4.H point 4. Exported so rendermt's scheduler can
// run it as a per-worker task against a disjoint scratch Output.
func (p *Pipeline) RenderObjectInto(obj *frame.ObjectDefinition, pcm map[uint32][]float64, out *Output, warnings *iaberr.Warnings) {
	signal := p.resolveSignal(obj.AudioDataID, pcm, out.SampleCount, warnings)

	k := len(obj.SubBlocks)
	if k == 0 {
		return
	}
	var prev gainMap
	for i, sb := range obj.SubBlocks {
		start := i * out.SampleCount / k
		end := (i + 1) * out.SampleCount / k

		gains := p.panSubBlock(sb, warnings)
		curr := toGainMap(gains, sb.Gain.Value())
		if i == 0 {
			// No earlier target is known for the first sub-block, so it
			// holds its own target instead of ramping up from silence.
			prev = curr
		}

		rampMix(out.Channels, prev, curr, signal, start, end-start)
		prev = curr
	}
}

// panSubBlock computes one Object Sub-Block's speaker gains: snap
// short-circuits the patch search; otherwise VBAP panning, zone-gain
// attenuation, and spread are applied in that order.
func (p *Pipeline) panSubBlock(sb frame.ObjectSubBlock, warnings *iaberr.Warnings) []vbap.SpeakerGain {
	dir := vbap.CubeToDirection(sb.Position)

	if sg, ok := p.engine.Snap(dir, sb.Snap); ok {
		return []vbap.SpeakerGain{sg}
	}

	gains, err := p.engine.Pan(dir)
	if err != nil {
		warnings.Add(iaberr.KindNoVBAPPatch)
		p.debug("render: no VBAP patch covers direction", "error", err.Error())
		return nil
	}

	zoneGain := sb.ZoneGain
	if zoneGain.Enabled && isEmptyZoneGain(zoneGain) {
		warnings.Add(iaberr.KindEmptyZone)
		zoneGain = frame.ZoneGain9{}
	}
	gains = vbap.ApplyZoneGain(gains, zoneGain, p.zoneOf)

	if amount := vbap.SpreadAmount(sb.Spread); amount > 0 {
		ring := p.spreadRing(sb)
		gains = vbap.ApplySpread(gains, sb.Spread, ring)
	}
	return gains
}

func (p *Pipeline) spreadRing(sb frame.ObjectSubBlock) []int {
	if sb.Spread.Mode == frame.SpreadHiRes3D {
		return p.engine.AllPhysical()
	}
	elevationDeg := (sb.Position.Z*2 - 1) * 90
	return p.engine.ElevationRing(elevationDeg)
}

// isEmptyZoneGain reports whether every zone is exactly the Gain zero
// value's silent-equivalent content: all nine zones silent, which
// spec.md §4.H treats as an invalid/empty zone definition rather than
// a deliberate all-silent pan.
func isEmptyZoneGain(z frame.ZoneGain9) bool {
	for _, g := range z.Zones {
		if g.Prefix != frame.GainSilence {
			return false
		}
	}
	return true
}

// zoneOf maps an output channel index to its vbap.Zone, used by
// ApplyZoneGain.
func (p *Pipeline) zoneOf(outputIndex int) int {
	if lfe, ok := p.cfg.LFE(); ok && lfe.Physical() && lfe.OutputIndex == outputIndex {
		return int(vbap.ZoneLFE)
	}
	for _, s := range p.cfg.PhysicalSpeakers {
		if s.OutputIndex == outputIndex {
			return int(vbap.ZoneOf(s.Azimuth, s.Elevation, false))
		}
	}
	return -1
}
