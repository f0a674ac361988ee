/*
NAME
  downmix.go

DESCRIPTION
  downmix.go applies a renderconfig.Speaker's downmix vector: scatter
  a scaled signal across its configured (target, coefficient) pairs,
  the redistribution spec.md §4.H describes for speakers missing from
  the physical configuration (and, additively, for any other speaker
  that also declares one).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import "github.com/ausocean/iab/renderconfig"

// applyDownmix adds signal (already gain-scaled) into out's rows per
// targets' coefficients, over [start, start+length) of the frame.
func applyDownmix(out [][]float64, targets []renderconfig.DownmixTarget, signal []float64, start, length int) {
	for _, t := range targets {
		if t.TargetOutputIndex < 0 || t.TargetOutputIndex >= len(out) {
			continue
		}
		row := out[t.TargetOutputIndex]
		n := length
		if max := len(signal) - start; max < n {
			n = max
		}
		if max := len(row) - start; max < n {
			n = max
		}
		if n <= 0 {
			continue
		}
		scaled := make([]float64, n)
		ops.scale(scaled, signal[start:start+n], t.Coefficient)
		ops.add(row[start:start+n], scaled)
	}
}
