// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cell

// bitWriter appends bits to a byte buffer. Bits are filled MSB-first within
// each byte, unused trailing bits of the last byte are always zero.
type bitWriter struct {
	data []byte
	pos  int // number of bits written
}

func (w *bitWriter) writeBit(bit bool) {
	if w.pos%8 == 0 {
		w.data = append(w.data, 0)
	}
	if bit {
		w.data[w.pos/8] |= 0x80 >> (w.pos % 8)
	}
	w.pos++
}

// writeUint appends the lowest n bits of v, most significant first.
func (w *bitWriter) writeUint(v uint64, n int) {
	for n > 0 {
		shift := w.pos % 8
		if shift == 0 {
			w.data = append(w.data, 0)
		}
		free := 8 - shift
		take := free
		if n < take {
			take = n
		}
		chunk := byte(v>>(n-take)) & byte(uint64(1)<<take-1)
		w.data[w.pos/8] |= chunk << (free - take)
		w.pos += take
		n -= take
	}
}

// writeBits appends n bits of src starting at the given bit offset.
func (w *bitWriter) writeBits(src []byte, n, offset int) {
	if w.pos%8 == 0 && offset%8 == 0 {
		// Start, whole bytes and a cleared remainder can be copied directly.
		start := offset / 8
		full := (n + 7) / 8
		w.data = append(w.data, src[start:start+full]...)
		w.pos += n
		if rest := n % 8; rest != 0 {
			w.data[len(w.data)-1] &= byte(0xff << (8 - rest))
		}
		return
	}
	for n > 0 {
		take := 8
		if n < take {
			take = n
		}
		w.writeUint(uint64(bitsAt(src, offset, take)), take)
		offset += take
		n -= take
	}
}

// bitsAt extracts up to 8 bits of src starting at the given bit offset.
func bitsAt(src []byte, offset, n int) byte {
	idx := offset / 8
	word := uint16(src[idx]) << 8
	if idx+1 < len(src) {
		word |= uint16(src[idx+1])
	}
	return byte(word>>(16-offset%8-n)) & byte(uint16(1)<<n-1)
}

// bitReader consumes bits from a byte buffer holding size valid bits.
type bitReader struct {
	data []byte
	size int
	pos  int
}

func (r *bitReader) left() int {
	return r.size - r.pos
}

func (r *bitReader) readBit() bool {
	bit := r.data[r.pos/8]&(0x80>>(r.pos%8)) != 0
	r.pos++
	return bit
}

// readUint consumes n <= 64 bits and returns them as the lowest bits of the
// result.
func (r *bitReader) readUint(n int) uint64 {
	var res uint64
	for n > 0 {
		shift := r.pos % 8
		take := 8 - shift
		if n < take {
			take = n
		}
		chunk := (r.data[r.pos/8] >> (8 - shift - take)) & byte(uint64(1)<<take-1)
		res = res<<take | uint64(chunk)
		r.pos += take
		n -= take
	}
	return res
}

// readBits consumes n bits and returns them left aligned in a fresh buffer.
func (r *bitReader) readBits(n int) []byte {
	w := bitWriter{data: make([]byte, 0, (n+7)/8)}
	w.writeBits(r.data, n, r.pos)
	r.pos += n
	return w.data
}
