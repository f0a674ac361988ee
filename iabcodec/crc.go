/*
NAME
  crc.go

DESCRIPTION
  crc.go implements the optional trailing sub-frame integrity word
  (spec.md SUPPLEMENTED FEATURES item 1), adapted from
  container/mts/psi/crc.go's reflected-polynomial CRC32 table builder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package iabcodec

import (
	"encoding/binary"
	"hash/crc32"
	"math/bits"
)

var crcTable = makeCRCTable(bits.Reverse32(crc32.IEEE))

func makeCRCTable(poly uint32) *crc32.Table {
	var t crc32.Table
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func updateCRC(crc uint32, tab *crc32.Table, p []byte) uint32 {
	for _, v := range p {
		crc = tab[byte(crc>>24)^v] ^ (crc << 8)
	}
	return crc
}

// crcOf is the one place that seeds updateCRC with this format's
// initial value and table; both writeCRC and VerifyCRC route through
// it rather than repeating the seed.
func crcOf(p []byte) uint32 {
	return updateCRC(0xffffffff, crcTable, p)
}

// writeCRC computes the CRC32 of b[:len(b)-4] and writes it big-endian
// into b's last four bytes in place.
func writeCRC(b []byte) {
	binary.BigEndian.PutUint32(b[len(b)-4:], crcOf(b[:len(b)-4]))
}

// AddCRC appends a four-byte big-endian CRC32 of out to out, the
// trailing integrity word of spec.md's optional frame-CRC profile.
func AddCRC(out []byte) []byte {
	t := make([]byte, len(out)+4)
	copy(t, out)
	writeCRC(t)
	return t
}

// VerifyCRC reports whether b's trailing four bytes are the correct
// CRC32 of the bytes preceding them.
func VerifyCRC(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	want := binary.BigEndian.Uint32(b[len(b)-4:])
	return crcOf(b[:len(b)-4]) == want
}
