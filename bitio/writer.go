/*
NAME
  writer.go

DESCRIPTION
  writer.go provides the MSB-first bit-level writer complementing
  Reader. The teacher's bits package (codec/h264/h264dec/bits) is
  read-only; this generalises its accumulator approach to writing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitio

import "github.com/pkg/errors"

// Writer writes bits MSB-first into a growable byte buffer.
//
// The zero value is ready to use.
type Writer struct {
	buf  []byte
	cur  byte // partially filled trailing byte
	bits int  // number of valid high bits already written into cur
}

// NewWriter returns a Writer with buf pre-allocated as the initial
// backing store (length 0, retained capacity).
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// WriteBits writes the low n bits (1..32) of v, MSB-first.
func (w *Writer) WriteBits(v uint32, n int) error {
	if n < 0 || n > 32 {
		return errors.Errorf("bitio: bit count %d out of range [0,32]", n)
	}
	if n < 32 {
		v &= (1 << uint(n)) - 1
	}
	need := n
	for need > 0 {
		free := 8 - w.bits
		take := free
		if take > need {
			take = need
		}
		shift := need - take
		chunk := byte((v >> uint(shift)) & ((1 << uint(take)) - 1))
		w.cur |= chunk << uint(free-take)
		w.bits += take
		need -= take
		if w.bits == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur = 0
			w.bits = 0
		}
	}
	return nil
}

// WriteBits64 writes the low n bits (1..64) of v, MSB-first.
func (w *Writer) WriteBits64(v uint64, n int) error {
	if n <= 32 {
		return w.WriteBits(uint32(v), n)
	}
	if err := w.WriteBits(uint32(v>>32), n-32); err != nil {
		return err
	}
	return w.WriteBits(uint32(v), 32)
}

// WriteBool writes a single bit.
func (w *Writer) WriteBool(b bool) error {
	if b {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// WriteByte writes a full byte. It is equivalent to WriteBits(uint32(b), 8).
func (w *Writer) WriteByte(b byte) error {
	return w.WriteBits(uint32(b), 8)
}

// WriteBytes writes raw bytes. The writer must be byte-aligned.
func (w *Writer) WriteBytes(b []byte) error {
	if !w.Aligned() {
		return errors.New("bitio: WriteBytes requires byte alignment")
	}
	w.buf = append(w.buf, b...)
	return nil
}

// Aligned reports whether the writer is currently on a byte boundary.
func (w *Writer) Aligned() bool { return w.bits == 0 }

// Align pads the current partial byte with zero bits up to the next
// byte boundary.
func (w *Writer) Align() {
	if w.bits != 0 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.bits = 0
	}
}

// BitLen returns the total number of bits written so far, including
// any unaligned trailing partial byte.
func (w *Writer) BitLen() int64 {
	return int64(len(w.buf))*8 + int64(w.bits)
}

// Bytes returns the written bytes, padding any trailing partial byte
// with zero bits. The returned slice aliases the Writer's internal
// buffer and is invalidated by further writes.
func (w *Writer) Bytes() []byte {
	w.Align()
	return w.buf
}

// Reset discards all written data, retaining the backing array.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.cur = 0
	w.bits = 0
}
