/*
NAME
  region.go

DESCRIPTION
  region.go partitions one DLC layer into lattice-predictor regions
  (spec.md §4.E item 4) and estimates each region's reflection
  coefficient from its own samples. The encoder here always emits a
  single region spanning the whole layer with an order-1 predictor (or
  order 0 for a region too short to support one); the decoder walks
  whatever region list the bitstream actually declares, so a
  multi-region bitstream from another encoder still decodes correctly.

  Grounded on codec/adpcm/adpcm.go's per-block adaptive step-size
  estimate, generalised from a scalar step to a lattice reflection
  coefficient.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

// region describes one predictor region: order reflection
// coefficients (scaled by kScale, signed 10-bit range) spanning
// length samples.
type region struct {
	order  int
	length int
	k      []int64
}

// kMax is the largest magnitude a signed 10-bit field can hold.
const kMax = 511

// planRegion picks a single region spanning all of samples and
// estimates its order-1 reflection coefficient from the lag-1
// autocorrelation. Order drops to 0 (no prediction) when there are
// too few samples to estimate one.
func planRegion(samples []int64) region {
	if len(samples) < 2 {
		return region{order: 0, length: len(samples)}
	}
	var num, den int64
	for i := 1; i < len(samples); i++ {
		num += samples[i] * samples[i-1]
		den += samples[i-1] * samples[i-1]
	}
	if den == 0 {
		return region{order: 1, length: len(samples), k: []int64{0}}
	}
	k := (num * kScale) / den
	if k > kMax {
		k = kMax
	}
	if k < -kMax {
		k = -kMax
	}
	return region{order: 1, length: len(samples), k: []int64{k}}
}

// encodeRegion runs samples through a fresh lattice built from r's
// coefficients, returning the per-sample residual.
func encodeRegion(r region, samples []int64) []int64 {
	lat := newLattice(r.k)
	out := make([]int64, len(samples))
	for i, s := range samples {
		out[i] = lat.encode(s)
	}
	return out
}

// decodeRegion is encodeRegion's inverse: given r's coefficients and
// the residual stream, reconstructs the original samples.
func decodeRegion(r region, residual []int64) []int64 {
	lat := newLattice(r.k)
	out := make([]int64, len(residual))
	for i, v := range residual {
		out[i] = lat.decode(v)
	}
	return out
}
