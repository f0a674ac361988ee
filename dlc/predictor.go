/*
NAME
  predictor.go

DESCRIPTION
  predictor.go implements spec.md §4.E's lattice-form all-pole
  predictor: an order-M forward/backward prediction-error lattice
  driven by signed 10-bit reflection (K) coefficients. The encoder
  runs the forward recursion to turn each sample into a residual; the
  decoder runs the inverse recursion to recover the sample from the
  residual, keeping identical backward-error state on both sides so
  the two stay in lock-step sample-by-sample.

  Grounded on codec/adpcm/adpcm.go's paired Encoder/Decoder idiom,
  where both sides carry the same estimator state advanced in lockstep.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

// maxOrder is the largest lattice order spec.md §4.E allows ("order
// (small int, 0..31)").
const maxOrder = 31

// kScale is the fixed-point scale of a signed 10-bit K-coefficient: a
// coefficient value of kScale represents a reflection coefficient of
// 1.0.
const kScale = 512 // 2^9, leaving the top bit for sign in a 10-bit field

// lattice is the shared order-M forward/backward prediction-error
// state for one predictor region. encode and decode are mirror
// recursions over the same b (backward error) state.
type lattice struct {
	order int
	k     []int64 // order reflection coefficients, signed, scaled by kScale
	b     []int64 // backward error state from the previous sample, length order
}

func newLattice(k []int64) *lattice {
	return &lattice{order: len(k), k: k, b: make([]int64, len(k))}
}

// encode turns one true sample into its residual, advancing the
// lattice's backward-error state for the next call.
func (l *lattice) encode(sample int64) int64 {
	if l.order == 0 {
		return sample
	}
	f := make([]int64, l.order+1)
	f[0] = sample
	newB := make([]int64, l.order)
	for i := 1; i <= l.order; i++ {
		k := l.k[i-1]
		bPrev := l.b[i-1]
		f[i] = f[i-1] - (k*bPrev)/kScale
		newB[i-1] = bPrev + (k*f[i-1])/kScale
	}
	l.b = newB
	return f[l.order]
}

// decode recovers one true sample from its residual, advancing the
// lattice's backward-error state identically to encode.
func (l *lattice) decode(residual int64) int64 {
	if l.order == 0 {
		return residual
	}
	f := make([]int64, l.order+1)
	f[l.order] = residual
	for i := l.order; i >= 1; i-- {
		k := l.k[i-1]
		bPrev := l.b[i-1]
		f[i-1] = f[i] + (k*bPrev)/kScale
	}
	newB := make([]int64, l.order)
	for i := 1; i <= l.order; i++ {
		k := l.k[i-1]
		bPrev := l.b[i-1]
		newB[i-1] = bPrev + (k*f[i-1])/kScale
	}
	l.b = newB
	return f[0]
}
