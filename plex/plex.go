/*
NAME
  plex.go

DESCRIPTION
  plex.go implements the ST 2098-2 "Plex" variable-length unsigned
  integer coding used for element IDs and element sizes: an 8-bit (or
  4-bit) base field, escaping to 16 then 32 bits when the base field
  is saturated.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package plex implements the ST 2098-2 Plex variable-length unsigned
// integer encoding.
package plex

import (
	"github.com/pkg/errors"

	"github.com/ausocean/iab/bitio"
)

// ErrBadPlex names a Plex escape sequence that does not terminate
// within the representation's cap. Read8 and Read4 never return it:
// the 32-bit stage ends every escape, and a field cut off by the end
// of the buffer yields a wrapped bitio short-read error instead.
var ErrBadPlex = errors.New("plex: unterminated escape sequence")

// Width selects the base field width of a Plex code: 8-bit (the
// common case, used for element IDs and sizes) or 4-bit.
type Width int

const (
	Width8 Width = 8
	Width4 Width = 4
)

// Read8 decodes an 8-bit-based Plex value: an 8-bit value v; if
// v < 0xFF that is the result, else a 16-bit value w follows; if
// w < 0xFFFF that is the result, else a final 32-bit value is read
// and returned (the ST 2098-2 cap — no further escaping).
func Read8(r *bitio.Reader) (uint32, error) {
	v, err := r.ReadBits(8)
	if err != nil {
		return 0, errors.Wrap(err, "plex: read base-8 field")
	}
	if v < 0xFF {
		return v, nil
	}
	w, err := r.ReadBits(16)
	if err != nil {
		return 0, errors.Wrap(err, "plex: read escape-16 field")
	}
	if w < 0xFFFF {
		return w, nil
	}
	full, err := r.ReadBits(32)
	if err != nil {
		return 0, errors.Wrap(err, "plex: read escape-32 field")
	}
	return full, nil
}

// Write8 encodes v using the shortest 8-bit-based Plex form.
func Write8(w *bitio.Writer, v uint32) error {
	switch {
	case v < 0xFF:
		return w.WriteBits(v, 8)
	case v < 0xFFFF:
		if err := w.WriteBits(0xFF, 8); err != nil {
			return err
		}
		return w.WriteBits(v, 16)
	default:
		if err := w.WriteBits(0xFF, 8); err != nil {
			return err
		}
		if err := w.WriteBits(0xFFFF, 16); err != nil {
			return err
		}
		return w.WriteBits(v, 32)
	}
}

// Read4 decodes a 4-bit-based Plex value, identical in structure to
// Read8 but with a 4-bit base field and 4-bit (not 8-bit) escape
// sentinel width doubling at each stage: 4 bits, else 16, else 32.
func Read4(r *bitio.Reader) (uint32, error) {
	v, err := r.ReadBits(4)
	if err != nil {
		return 0, errors.Wrap(err, "plex: read base-4 field")
	}
	if v < 0xF {
		return v, nil
	}
	w, err := r.ReadBits(16)
	if err != nil {
		return 0, errors.Wrap(err, "plex: read escape-16 field")
	}
	if w < 0xFFFF {
		return w, nil
	}
	full, err := r.ReadBits(32)
	if err != nil {
		return 0, errors.Wrap(err, "plex: read escape-32 field")
	}
	return full, nil
}

// Write4 encodes v using the shortest 4-bit-based Plex form.
func Write4(w *bitio.Writer, v uint32) error {
	switch {
	case v < 0xF:
		return w.WriteBits(v, 4)
	case v < 0xFFFF:
		if err := w.WriteBits(0xF, 4); err != nil {
			return err
		}
		return w.WriteBits(v, 16)
	default:
		if err := w.WriteBits(0xF, 4); err != nil {
			return err
		}
		if err := w.WriteBits(0xFFFF, 16); err != nil {
			return err
		}
		return w.WriteBits(v, 32)
	}
}

// EncodedLenBits8 returns the number of bits Write8 would use for v,
// useful for pre-computing element sizes before a body is written.
func EncodedLenBits8(v uint32) int {
	switch {
	case v < 0xFF:
		return 8
	case v < 0xFFFF:
		return 8 + 16
	default:
		return 8 + 16 + 32
	}
}
