// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"encoding/binary"
	"math/bits"
)

const (
	hashBits = 15
	hashSize = 1 << hashBits
)

// Per-level match effort. A current match of at least good length quarters
// the remaining chain budget, a match of at least nice length stops the
// search outright, and chain bounds how many candidates are visited at all.
// Levels differ only in effort; the output format is identical.
var levels = [10]struct {
	good, nice, chain int
}{
	{}, // Level 0 emits stored blocks and never searches
	{4, 8, 4},
	{4, 16, 8},
	{4, 32, 32},
	{4, 16, 16},
	{8, 32, 32},
	{8, 128, 128},
	{8, 128, 256},
	{32, 258, 1024},
	{32, 258, 4096},
}

// Compress encodes input as a self-contained DEFLATE stream. Level 0 emits
// stored blocks only; levels 1 through 9 trade compression effort for ratio
// using LZ77 matching over a 32 KiB window with the fixed prefix codes of
// RFC section 3.2.6. The output is deterministic for identical inputs.
func Compress(input []byte, level int) ([]byte, error) {
	if level < 0 || level >= len(levels) {
		return nil, errInvalidLevel
	}
	if int64(len(input)) >= 1<<31 {
		return nil, errInputTooBig
	}
	if level == 0 {
		return compressStored(input), nil
	}

	fw := compressor{input: input, lvl: levels[level]}
	fw.bw.Init(nil)
	fw.encode()
	return fw.bw.Bytes(), nil
}

// compressStored emits the input as a sequence of stored blocks
// (RFC section 3.2.4), at most maxRawBlockSize bytes each.
func compressStored(input []byte) []byte {
	var bw bitWriter
	bw.Init(make([]byte, 0, len(input)+5*(len(input)/maxRawBlockSize+1)))
	for {
		n := len(input)
		if n > maxRawBlockSize {
			n = maxRawBlockSize
		}
		last := uint(0)
		if n == len(input) {
			last = 1
		}
		bw.WriteBits(last, 1)
		bw.WriteBits(0, 2)
		bw.WritePads()
		bw.WriteBits(uint(n), 16)
		bw.WriteBits(uint(n)^0xffff, 16)
		bw.WriteBytes(input[:n])
		input = input[n:]
		if last == 1 {
			return bw.Bytes()
		}
	}
}

type compressor struct {
	bw    bitWriter
	input []byte
	lvl   struct{ good, nice, chain int }

	// Hash chains over byte triplets. Entries store position+1 so that the
	// zero value means empty.
	head [hashSize]int32
	prev []int32
}

func hash3(b []byte) uint32 {
	return (uint32(b[0])<<10 ^ uint32(b[1])<<5 ^ uint32(b[2])) & (hashSize - 1)
}

// encode runs greedy LZ77 parsing over the whole input and emits a single
// fixed prefix block terminated by the end-of-block symbol.
func (fw *compressor) encode() {
	fw.bw.WriteBits(1, 1) // Last block
	fw.bw.WriteBits(1, 2) // Fixed prefix block

	fw.prev = make([]int32, len(fw.input))
	pos := 0
	for pos < len(fw.input) {
		length, dist := 0, 0
		if pos+minMatchLen <= len(fw.input) {
			length, dist = fw.findMatch(pos)
		}
		if length >= minMatchLen {
			fw.writeMatch(length, dist)
			for end := pos + length; pos < end; pos++ {
				if pos+minMatchLen <= len(fw.input) {
					fw.insert(pos)
				}
			}
		} else {
			fw.bw.WriteSymbol(uint(fw.input[pos]), &litEnc)
			if pos+minMatchLen <= len(fw.input) {
				fw.insert(pos)
			}
			pos++
		}
	}
	fw.bw.WriteSymbol(endBlockSym, &litEnc)
}

func (fw *compressor) insert(pos int) {
	h := hash3(fw.input[pos:])
	fw.prev[pos] = fw.head[h]
	fw.head[h] = int32(pos + 1)
}

// findMatch walks the hash chain for the triplet at pos, nearest candidate
// first. A candidate replaces the current best only when strictly longer, so
// equal-length matches resolve to the smallest distance.
func (fw *compressor) findMatch(pos int) (length, dist int) {
	limit := len(fw.input) - pos
	if limit > maxMatchLen {
		limit = maxMatchLen
	}
	want := fw.input[pos : pos+limit]

	chain := fw.lvl.chain
	h := hash3(fw.input[pos:])
	for p := int(fw.head[h]) - 1; p >= 0 && chain > 0; p = int(fw.prev[p]) - 1 {
		if pos-p > maxHistSize {
			break
		}
		if l := matchLen(fw.input[p:], want); l > length {
			length, dist = l, pos-p
			if length >= fw.lvl.nice {
				break
			}
			if length >= fw.lvl.good {
				chain >>= 2
			}
		}
		chain--
	}
	return length, dist
}

// matchLen reports the length of the common prefix of a and b.
// It requires len(a) >= len(b).
func matchLen(a, b []byte) (n int) {
	for len(b)-n >= 8 {
		if x := binary.LittleEndian.Uint64(a[n:]) ^ binary.LittleEndian.Uint64(b[n:]); x != 0 {
			return n + bits.TrailingZeros64(x)>>3
		}
		n += 8
	}
	for n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// writeMatch emits a length-distance pair using the fixed prefix codes.
func (fw *compressor) writeMatch(length, dist int) {
	lenSym := lenEnc.Encode(uint(length))
	fw.bw.WriteSymbol(257+lenSym, &litEnc)
	fw.bw.WriteOffset(uint(length), lenSym, lenRanges)

	distSym := dstEnc.Encode(uint(dist))
	fw.bw.WriteSymbol(distSym, &distEnc)
	fw.bw.WriteOffset(uint(dist), distSym, distRanges)
}
