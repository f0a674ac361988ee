/*
NAME
  reader.go

DESCRIPTION
  reader.go provides a bit-level reader over an in-memory byte buffer,
  supporting MSB-first reads of 1-32 bits, byte alignment, absolute
  positioning and peeking without consuming.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitio provides MSB-first bit-level reading and writing over
// byte buffers, as required to pack and parse an ST 2098-2 bitstream.
package bitio

import "github.com/pkg/errors"

// ErrShort is returned when a read would cross the end of the buffer.
var ErrShort = errors.New("bitio: short read")

// Reader reads bits MSB-first from a byte slice.
//
// The zero value is not usable; use NewReader.
type Reader struct {
	buf    []byte
	bitPos int64 // absolute bit position from the start of buf
}

// NewReader returns a Reader over b. b is not copied; the caller must
// not mutate it while the Reader is in use.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the total number of bits available.
func (r *Reader) Len() int64 { return int64(len(r.buf)) * 8 }

// BitPos returns the current absolute bit offset from the start of
// the buffer.
func (r *Reader) BitPos() int64 { return r.bitPos }

// BytePos returns the current byte offset, valid only when the reader
// is byte aligned.
func (r *Reader) BytePos() int64 { return r.bitPos / 8 }

// Aligned reports whether the current position is on a byte boundary.
func (r *Reader) Aligned() bool { return r.bitPos%8 == 0 }

// Align advances to the next byte boundary, discarding any partial
// byte already read.
func (r *Reader) Align() {
	if rem := r.bitPos % 8; rem != 0 {
		r.bitPos += 8 - rem
	}
}

// EOF reports whether the reader has no more bits available.
func (r *Reader) EOF() bool { return r.bitPos >= r.Len() }

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int64 { return r.Len() - r.bitPos }

// Seek moves the reader to an absolute bit position.
func (r *Reader) Seek(bitPos int64) error {
	if bitPos < 0 || bitPos > r.Len() {
		return errors.Wrapf(ErrShort, "seek to bit %d out of range [0,%d]", bitPos, r.Len())
	}
	r.bitPos = bitPos
	return nil
}

// ReadBits reads n bits (1..32, or 0 which yields 0) MSB-first and
// advances the reader.
func (r *Reader) ReadBits(n int) (uint32, error) {
	v, err := r.peekBits(n)
	if err != nil {
		return 0, err
	}
	r.bitPos += int64(n)
	return v, nil
}

// ReadBits64 reads n bits (1..64) MSB-first and advances the reader.
func (r *Reader) ReadBits64(n int) (uint64, error) {
	if n <= 32 {
		v, err := r.ReadBits(n)
		return uint64(v), err
	}
	hi, err := r.ReadBits(n - 32)
	if err != nil {
		return 0, err
	}
	lo, err := r.ReadBits(32)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// PeekBits returns the next n bits MSB-first without advancing the
// reader.
func (r *Reader) PeekBits(n int) (uint32, error) {
	return r.peekBits(n)
}

func (r *Reader) peekBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, errors.Errorf("bitio: bit count %d out of range [0,32]", n)
	}
	if n == 0 {
		return 0, nil
	}
	if int64(n) > r.Remaining() {
		return 0, errors.Wrapf(ErrShort, "need %d bits, have %d", n, r.Remaining())
	}
	var v uint64
	pos := r.bitPos
	need := n
	for need > 0 {
		byteIdx := pos / 8
		bitOff := uint(pos % 8)
		avail := 8 - int(bitOff)
		take := avail
		if take > need {
			take = need
		}
		b := r.buf[byteIdx]
		shift := avail - take
		mask := byte((1 << uint(take)) - 1)
		bits := (b >> uint(shift)) & mask
		v = v<<uint(take) | uint64(bits)
		pos += int64(take)
		need -= take
	}
	return uint32(v), nil
}

// ReadByte reads the next 8 bits as a byte. The reader need not be
// aligned; ReadByte is equivalent to ReadBits(8).
func (r *Reader) ReadByte() (byte, error) {
	v, err := r.ReadBits(8)
	return byte(v), err
}

// ReadBytes reads n bytes. The reader must be byte-aligned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if !r.Aligned() {
		return nil, errors.New("bitio: ReadBytes requires byte alignment")
	}
	if n < 0 {
		return nil, errors.Errorf("bitio: negative length %d", n)
	}
	start := r.bitPos / 8
	end := start + int64(n)
	if end > int64(len(r.buf)) {
		return nil, errors.Wrapf(ErrShort, "need %d bytes at offset %d, have %d", n, start, len(r.buf))
	}
	out := make([]byte, n)
	copy(out, r.buf[start:end])
	r.bitPos = end * 8
	return out, nil
}

// ReadBool reads a single bit as a bool.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadBits(1)
	return v != 0, err
}
