/*
NAME
  errors_test.go

DESCRIPTION
  errors_test.go contains tests for the iaberr package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package iaberr

import (
	"sync"
	"testing"
)

func TestWrapAs(t *testing.T) {
	base := New(KindSizeMismatch, "boom")
	if !As(base, KindSizeMismatch) {
		t.Fatal("expected As to match kind")
	}
	if As(base, KindBadPlex) {
		t.Fatal("expected As to reject wrong kind")
	}
}

func TestFatalClassification(t *testing.T) {
	for k, want := range map[Kind]bool{
		KindIOShort:        true,
		KindBadPlex:        true,
		KindReservedPrefix: true,
		KindSizeMismatch:   false,
		KindUnknownElement: false,
	} {
		if got := k.Fatal(); got != want {
			t.Errorf("%v.Fatal() = %v, want %v", k, got, want)
		}
	}
}

func TestWarningsConcurrentAdd(t *testing.T) {
	var w Warnings
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Add(KindSizeMismatch)
		}()
	}
	wg.Wait()
	if got := w.Count(KindSizeMismatch); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestWarningsMerge(t *testing.T) {
	var a, b Warnings
	a.Add(KindSizeMismatch)
	b.Add(KindSizeMismatch)
	b.Add(KindEmptyZone)
	b.AddUnknownElement()
	a.Merge(&b)
	if got := a.Count(KindSizeMismatch); got != 2 {
		t.Errorf("SizeMismatch = %d, want 2", got)
	}
	if got := a.Count(KindEmptyZone); got != 1 {
		t.Errorf("EmptyZone = %d, want 1", got)
	}
	if got := a.UnknownElementCount(); got != 1 {
		t.Errorf("unknown = %d, want 1", got)
	}
}
