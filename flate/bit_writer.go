// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/fconvert/compress/internal/prefix"

// The bitWriter encodes into a growing byte slice. Bits are staged in a
// 64-bit buffer in LSB-first order and drained to the slice one byte at a
// time, so the staging buffer never holds a full byte between calls.
type bitWriter struct {
	buf     []byte
	bufBits uint64 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits
}

func (bw *bitWriter) Init(buf []byte) {
	*bw = bitWriter{buf: buf[:0]}
}

// WriteBits writes nb bits of val in LSB order to the output.
func (bw *bitWriter) WriteBits(val, nb uint) {
	bw.bufBits |= uint64(val) << bw.numBits
	bw.numBits += nb
	for bw.numBits >= 8 {
		bw.buf = append(bw.buf, byte(bw.bufBits))
		bw.bufBits >>= 8
		bw.numBits -= 8
	}
}

// WritePads writes 0-7 zero bits to achieve byte-alignment.
func (bw *bitWriter) WritePads() {
	if bw.numBits > 0 {
		bw.WriteBits(0, 8-bw.numBits)
	}
}

// WriteBytes writes literal bytes to the output.
// The bit buffer must be byte-aligned when calling this.
func (bw *bitWriter) WriteBytes(b []byte) {
	bw.buf = append(bw.buf, b...)
}

// WriteSymbol writes the given symbol using the provided prefix.Encoder.
func (bw *bitWriter) WriteSymbol(sym uint, pe *prefix.Encoder) {
	chunk := pe.Chunks[sym]
	bw.WriteBits(uint(chunk>>prefix.CountBits), uint(chunk&prefix.CountMask))
}

// WriteOffset writes the extra bits that place offset within the range
// selected by sym.
func (bw *bitWriter) WriteOffset(offset, sym uint, rcs prefix.RangeCodes) {
	rc := rcs[sym]
	bw.WriteBits(offset-uint(rc.Base), uint(rc.Len))
}

// Bytes flushes any partial byte with zero padding and returns the output.
func (bw *bitWriter) Bytes() []byte {
	bw.WritePads()
	return bw.buf
}
