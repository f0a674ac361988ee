/*
NAME
  warnings.go

DESCRIPTION
  warnings.go implements the warning accumulator: non-fatal errors
  encountered while parsing or rendering a frame are counted by Kind
  rather than propagated, per spec.md §7 ("Warnings accumulate into a
  counter keyed by kind; the surface API exposes total counts").

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package iaberr

import "sync"

// Warnings accumulates non-fatal diagnostics keyed by Kind. The zero
// value is ready to use. Warnings is safe for concurrent use so a
// single instance can be shared across the MT scheduler's workers.
type Warnings struct {
	mu     sync.Mutex
	counts map[Kind]int
	unk    int // unknown_sub_element_count, tracked separately per spec.md §3/§4.D
}

// Add records one occurrence of kind k.
func (w *Warnings) Add(k Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.counts == nil {
		w.counts = make(map[Kind]int)
	}
	w.counts[k]++
}

// AddUnknownElement increments the unknown-sub-element counter,
// distinct from the Kind-keyed warning counts since spec.md tracks it
// per-frame rather than as a warning kind.
func (w *Warnings) AddUnknownElement() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unk++
}

// UnknownElementCount returns the running unknown-sub-element count.
func (w *Warnings) UnknownElementCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unk
}

// Count returns the number of times kind k has been recorded.
func (w *Warnings) Count(k Kind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[k]
}

// Total returns the sum of all recorded warning counts, excluding the
// unknown-element counter.
func (w *Warnings) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	var n int
	for _, c := range w.counts {
		n += c
	}
	return n
}

// Snapshot returns a copy of the current per-kind counts, safe for the
// caller to retain and inspect "once per session" as spec.md §7 puts
// it.
func (w *Warnings) Snapshot() map[Kind]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[Kind]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

// Merge folds other's counts into w, used by the MT scheduler to
// combine per-worker warning sets into a single frame-wide result.
func (w *Warnings) Merge(other *Warnings) {
	if other == nil {
		return
	}
	other.mu.Lock()
	unk := other.unk
	counts := make(map[Kind]int, len(other.counts))
	for k, v := range other.counts {
		counts[k] = v
	}
	other.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.counts == nil {
		w.counts = make(map[Kind]int)
	}
	w.unk += unk
	for k, v := range counts {
		w.counts[k] += v
	}
}
