/*
NAME
  dlc.go

DESCRIPTION
  dlc.go implements spec.md §4.E's top-level DLC Encode/Decode entry
  points: the 48 kHz single-layer payload, and the 96 kHz dual-layer
  payload (an embedded 48 kHz layer plus a residual refinement layer).

  Grounded on codec/adpcm/adpcm.go's package-level Encode/Decode pair
  operating over whole buffers, and on codec/pcm for the 24-bit sample
  convention this codec round-trips.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dlc implements the ST 2098-2 Dynamic Lossless Codec
// (spec.md §4.E): a per-region lattice all-pole predictor with Rice
// or PCM residual coding, losslessly round-tripping 24-bit PCM at
// 48 kHz, and at 96 kHz via an embedded 48 kHz layer plus a
// refinement layer.
package dlc

import (
	"github.com/ausocean/iab/bitio"
	"github.com/ausocean/iab/frame"
	"github.com/ausocean/iab/plex"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// log is the package's structured diagnostics sink, silent by
// default. SetLogger lets a host application (e.g. the renderer)
// forward DLC's per-region/per-subblock decisions into its own zap
// pipeline.
var log = zap.NewNop().Sugar()

// SetLogger installs l as the package's diagnostics sink.
func SetLogger(l *zap.SugaredLogger) { log = l }

const (
	codeTypePCM  = false
	codeTypeRice = true
)

// shiftBits is always emitted as 0: the encoder never scales
// residuals, so every round trip is exact regardless of how region
// coefficients were chosen. A decoded stream may still declare a
// non-zero shift_bits (another conformant encoder chose to), which
// packLayer/unpackLayer apply symmetrically: the residual stored on
// the wire is the true residual right-shifted by shift_bits, and the
// decoder recovers it by left-shifting back (spec.md §4.E: "shift_bits
// scales the residual by 2^shift before adding").
const shiftBits = 0

// Encode packs samples (24-bit PCM, spec.md §3) into a DLC payload at
// sr. At 96 kHz, samples is resampled down to a 48 kHz layer and a
// refinement layer carries the difference needed to recover samples
// exactly (spec.md §4.E item 6).
func Encode(samples []int32, sr frame.SampleRate) ([]byte, error) {
	if !sr.Valid() {
		return nil, errors.Errorf("dlc: unsupported sample rate %d", sr)
	}
	w := bitio.NewWriter(nil)
	if err := w.WriteBits(shiftBits, 5); err != nil {
		return nil, err
	}
	if err := w.WriteBool(sr == frame.SampleRate96k); err != nil {
		return nil, err
	}

	samples64 := toInt64(samples)
	if sr == frame.SampleRate48k {
		if err := packLayer(w, samples64, shiftBits); err != nil {
			return nil, err
		}
		return w.Bytes(), nil
	}

	// 96 kHz: embed a 48 kHz layer, then a refinement layer that
	// carries X96 - upsample(decode(layer48)) exactly.
	layer48Samples := toInt64(Resample48(samples))
	if err := packLayer(w, layer48Samples, shiftBits); err != nil {
		return nil, err
	}
	reconstructed48, err := unpackLayerRoundTrip(layer48Samples)
	if err != nil {
		return nil, err
	}
	prediction96 := upsample96(reconstructed48, len(samples64))
	refinement := make([]int64, len(samples64))
	for i := range refinement {
		refinement[i] = samples64[i] - prediction96[i]
	}
	if err := packLayer(w, refinement, shiftBits); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode unpacks a DLC payload into its samples at the embedded
// sample rate (spec.md §4.E).
func Decode(payload []byte) ([]int32, frame.SampleRate, error) {
	r := bitio.NewReader(payload)
	shiftVal, err := r.ReadBits(5)
	if err != nil {
		return nil, 0, errors.Wrap(err, "dlc: read shift_bits")
	}
	shift := int(shiftVal)
	is96, err := r.ReadBool()
	if err != nil {
		return nil, 0, errors.Wrap(err, "dlc: read sample_rate_code")
	}

	layer48, err := unpackLayer(r, shift)
	if err != nil {
		return nil, 0, errors.Wrap(err, "dlc: decode 48 kHz layer")
	}
	if !is96 {
		return fromInt64(layer48), frame.SampleRate48k, nil
	}

	refinement, err := unpackLayer(r, shift)
	if err != nil {
		return nil, 0, errors.Wrap(err, "dlc: decode refinement layer")
	}
	prediction96 := upsample96(layer48, len(refinement))
	out := make([]int64, len(refinement))
	for i := range out {
		out[i] = prediction96[i] + refinement[i]
	}
	return fromInt64(out), frame.SampleRate96k, nil
}

// Decode48Only decodes only the embedded 48 kHz layer of a (possibly
// 96 kHz) DLC payload, spec.md §4.H's "renderer output fixed at
// 48 kHz" pathway: it never touches the refinement layer.
func Decode48Only(payload []byte) ([]int32, error) {
	r := bitio.NewReader(payload)
	shiftVal, err := r.ReadBits(5)
	if err != nil {
		return nil, errors.Wrap(err, "dlc: read shift_bits")
	}
	if _, err := r.ReadBool(); err != nil {
		return nil, errors.Wrap(err, "dlc: read sample_rate_code")
	}
	layer48, err := unpackLayer(r, int(shiftVal))
	if err != nil {
		return nil, errors.Wrap(err, "dlc: decode 48 kHz layer")
	}
	return fromInt64(layer48), nil
}

// Resample48 decimates a 96 kHz sample stream to 48 kHz by taking
// every other sample. This is the one sample-rate conversion spec.md
// §2 carves out as in-scope ("the 96 → 48 kHz downsample that falls
// naturally out of DLC"), and is exported so the renderer can produce
// the same reference signal spec.md §8's scenario S6 checks against.
func Resample48(samples []int32) []int32 {
	out := make([]int32, (len(samples)+1)/2)
	for i := range out {
		out[i] = samples[2*i]
	}
	return out
}

// upsample96 expands a 48 kHz reconstruction to n samples at 96 kHz
// by zero-order hold, the deterministic counterpart to Resample48
// used to derive the refinement layer's prediction signal.
func upsample96(samples48 []int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		j := i / 2
		if j >= len(samples48) {
			j = len(samples48) - 1
		}
		if j < 0 {
			out[i] = 0
			continue
		}
		out[i] = samples48[j]
	}
	return out
}

// unpackLayerRoundTrip packs then immediately decodes a layer, giving
// the encoder the exact reconstruction the decoder will later see
// (needed because the layer's predictor residual is lossless but not
// necessarily an identity function).
func unpackLayerRoundTrip(samples []int64) ([]int64, error) {
	w := bitio.NewWriter(nil)
	if err := packLayer(w, samples, shiftBits); err != nil {
		return nil, err
	}
	r := bitio.NewReader(w.Bytes())
	return unpackLayer(r, shiftBits)
}

// packLayer writes one layer: num_pred_regions, the region list, the
// predictor residual, and its sub-block coding (spec.md §4.E items
// 3-5). The encoder always emits a single region. shift is the
// layer's shift_bits: the residual is right-shifted by shift before
// coding, the inverse of unpackLayer's left shift.
func packLayer(w *bitio.Writer, samples []int64, shift int) error {
	r := planRegion(samples)
	if err := w.WriteBits(1, 2); err != nil { // num_pred_regions: always 1
		return err
	}
	if err := writeRegion(w, r); err != nil {
		return err
	}
	residual := encodeRegion(r, samples)
	shiftResidual(residual, -shift)
	log.Debugw("dlc: packed layer", "order", r.order, "length", r.length, "rice_rem_bits", riceRemBitsFor(residual))
	return packSubBlocks(w, residual)
}

// unpackLayer is packLayer's inverse, generalised to however many
// regions and sub-blocks the bitstream actually declares. shift is
// the layer's shift_bits (spec.md §4.E: "shift_bits scales the
// residual by 2^shift before adding"): the residual read off the wire
// is left-shifted by shift before it is handed to the predictor.
func unpackLayer(r *bitio.Reader, shift int) ([]int64, error) {
	numRegions, err := r.ReadBits(2)
	if err != nil {
		return nil, errors.Wrap(err, "dlc: read num_pred_regions")
	}
	if numRegions == 0 {
		numRegions = 1 // spec.md §4.E: region lengths must sum to the layer's sample count
	}
	regions := make([]region, numRegions)
	total := 0
	for i := range regions {
		reg, err := readRegion(r)
		if err != nil {
			return nil, errors.Wrap(err, "dlc: read region")
		}
		regions[i] = reg
		total += reg.length
	}
	residual, err := unpackSubBlocks(r, total)
	if err != nil {
		return nil, err
	}
	shiftResidual(residual, shift)
	out := make([]int64, 0, total)
	pos := 0
	for _, reg := range regions {
		out = append(out, decodeRegion(reg, residual[pos:pos+reg.length])...)
		pos += reg.length
	}
	return out, nil
}

// shiftResidual scales residual by 2^shift in place: a positive shift
// left-shifts (decode side, recovering the true residual magnitude), a
// negative shift right-shifts (encode side, storing the residual at
// shift_bits' reduced precision). shift == 0 is a no-op, matching the
// encoder's permanently-zero shiftBits.
func shiftResidual(residual []int64, shift int) {
	switch {
	case shift > 0:
		for i, v := range residual {
			residual[i] = v << uint(shift)
		}
	case shift < 0:
		n := uint(-shift)
		for i, v := range residual {
			residual[i] = v >> n
		}
	}
}

func writeRegion(w *bitio.Writer, r region) error {
	if err := w.WriteBits(uint32(r.order), 5); err != nil {
		return err
	}
	if err := plex.Write8(w, uint32(r.length)); err != nil {
		return err
	}
	for _, k := range r.k {
		if err := w.WriteBits(uint32(k)&0x3FF, 10); err != nil {
			return err
		}
	}
	return nil
}

func readRegion(r *bitio.Reader) (region, error) {
	order, err := r.ReadBits(5)
	if err != nil {
		return region{}, err
	}
	length, err := plex.Read8(r)
	if err != nil {
		return region{}, err
	}
	k := make([]int64, order)
	for i := range k {
		v, err := r.ReadBits(10)
		if err != nil {
			return region{}, err
		}
		k[i] = signExtend64(uint64(v), 10)
	}
	return region{order: int(order), length: int(length), k: k}, nil
}

// packSubBlocks writes residual as a single Rice-coded sub-block.
// spec.md §4.E allows an arbitrary sequence of PCM/Rice sub-blocks;
// the decoder (unpackSubBlocks) supports both, one sub-block is
// sufficient for a deterministic, always-lossless encoder.
func packSubBlocks(w *bitio.Writer, residual []int64) error {
	if err := plex.Write8(w, 1); err != nil { // num_dlc_sub_blocks
		return err
	}
	remBits := riceRemBitsFor(residual)
	if err := w.WriteBool(codeTypeRice); err != nil {
		return err
	}
	if err := plex.Write8(w, uint32(remBits)); err != nil {
		return err
	}
	if err := plex.Write8(w, uint32(len(residual))); err != nil {
		return err
	}
	return writeResidualRice(w, residual, remBits)
}

func unpackSubBlocks(r *bitio.Reader, total int) ([]int64, error) {
	count, err := plex.Read8(r)
	if err != nil {
		return nil, errors.Wrap(err, "dlc: read num_dlc_sub_blocks")
	}
	out := make([]int64, 0, total)
	for i := uint32(0); i < count; i++ {
		isRice, err := r.ReadBool()
		if err != nil {
			return nil, errors.Wrap(err, "dlc: read code_type")
		}
		if !isRice {
			bitDepth, err := plex.Read8(r)
			if err != nil {
				return nil, err
			}
			size, err := plex.Read8(r)
			if err != nil {
				return nil, err
			}
			vals, err := readResidualPCM(r, int(size), int(bitDepth))
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
			continue
		}
		remBits, err := plex.Read8(r)
		if err != nil {
			return nil, err
		}
		size, err := plex.Read8(r)
		if err != nil {
			return nil, err
		}
		vals, err := readResidualRice(r, int(size), int(remBits))
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	if len(out) != total {
		return nil, errors.Errorf("dlc: sub-block sample total %d does not match region length total %d", len(out), total)
	}
	return out, nil
}

func toInt64(samples []int32) []int64 {
	out := make([]int64, len(samples))
	for i, s := range samples {
		out[i] = int64(s)
	}
	return out
}

func fromInt64(samples []int64) []int32 {
	out := make([]int32, len(samples))
	for i, s := range samples {
		out[i] = int32(s)
	}
	return out
}
