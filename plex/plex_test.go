/*
NAME
  plex_test.go

DESCRIPTION
  plex_test.go contains tests for the plex package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package plex

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/ausocean/iab/bitio"
)

func TestRead8Write8(t *testing.T) {
	cases := []struct {
		name string
		v    uint32
		bits int
	}{
		{"tiny", 0, 8},
		{"max-base", 0xFE, 8},
		{"escape16-min", 0xFF, 8 + 16},
		{"escape16-mid", 0x1234, 8 + 16},
		{"escape16-max", 0xFFFE, 8 + 16},
		{"escape32", 0x10000, 8 + 16 + 32},
		{"escape32-max", 0xFFFFFFFF, 8 + 16 + 32},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := bitio.NewWriter(nil)
			if err := Write8(w, c.v); err != nil {
				t.Fatal(err)
			}
			if int(w.BitLen()) != c.bits {
				t.Errorf("wrote %d bits, want shortest form %d bits", w.BitLen(), c.bits)
			}
			r := bitio.NewReader(w.Bytes())
			got, err := Read8(r)
			if err != nil {
				t.Fatal(err)
			}
			if got != c.v {
				t.Errorf("got %d, want %d", got, c.v)
			}
		})
	}
}

// TestShortestFormProperty is the spec.md §8.3 property: the writer
// never uses a wider representation than necessary.
func TestShortestFormProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Uint32().Draw(rt, "v")
		w := bitio.NewWriter(nil)
		if err := Write8(w, v); err != nil {
			rt.Fatal(err)
		}
		want := EncodedLenBits8(v)
		if int(w.BitLen()) != want {
			rt.Fatalf("value %d encoded in %d bits, want shortest %d", v, w.BitLen(), want)
		}
		r := bitio.NewReader(w.Bytes())
		got, err := Read8(r)
		if err != nil {
			rt.Fatal(err)
		}
		if got != v {
			rt.Fatalf("round-trip mismatch: got %d, want %d", got, v)
		}
	})
}

func TestRead4Write4(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Uint32().Draw(rt, "v")
		w := bitio.NewWriter(nil)
		if err := Write4(w, v); err != nil {
			rt.Fatal(err)
		}
		r := bitio.NewReader(w.Bytes())
		got, err := Read4(r)
		if err != nil {
			rt.Fatal(err)
		}
		if got != v {
			rt.Fatalf("round-trip mismatch: got %d, want %d", got, v)
		}
	})
}
