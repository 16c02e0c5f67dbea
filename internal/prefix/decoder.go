// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package prefix

// The algorithm used to decode variable length codes is based on the lookup
// method in zlib. If the code is less-than-or-equal to maxChunkBits,
// then the symbol can be decoded using a single lookup into the chunks table.
// Otherwise, the links table will be used for a second level lookup.
//
// The chunks slice is keyed by the contents of the bit buffer ANDed with the
// ChunkMask to avoid a out-of-bounds lookup. The value of chunks is a tuple
// that is decoded as follow:
//
//	var length = chunks[bitBuffer&ChunkMask] & CountMask
//	var symbol = chunks[bitBuffer&ChunkMask] >> CountBits
//
// If the decoded length is larger than ChunkBits, then an overflow link table
// is used for further decoding. In this case, the symbol is actually the
// index into the links tables. The second-level links table is keyed by the
// contents of the bit buffer shifted down by ChunkBits and ANDed with
// LinkMask:
//
//	var length = links[symbol][bitBuffer>>ChunkBits&LinkMask] & CountMask
//	var symbol = links[symbol][bitBuffer>>ChunkBits&LinkMask] >> CountBits

// maxChunkBits is the maximum bit-width of the first-level lookup table.
const maxChunkBits = 9

// Decoder is a prefix decoder lookup table built from a set of canonically
// assigned prefix codes. The zero value is an empty table.
type Decoder struct {
	Chunks    []uint32   // First-level lookup map
	Links     [][]uint32 // Second-level lookup map
	ChunkMask uint32     // Mask the length of the chunks table
	LinkMask  uint32     // Mask the length of the link table
	NumSyms   uint32     // Number of prefix codes
	MinBits   uint32     // The minimum number of bits to safely make progress
	ChunkBits uint32     // The number of bits used as the index into chunks
}

// Init initializes the Decoder from the given codes. The codes must have
// canonically assigned values (see GeneratePrefixes) and form a complete
// prefix tree. Since the codes are trusted to be valid, Init performs no
// error checking of its own.
func (pd *Decoder) Init(codes PrefixCodes) {
	pd.NumSyms = uint32(len(codes))
	if len(codes) == 0 {
		pd.Chunks, pd.Links = pd.Chunks[:0], pd.Links[:0]
		pd.ChunkMask, pd.LinkMask = 0, 0
		pd.MinBits, pd.ChunkBits = 0, 0
		return
	}

	var minBits, maxBits uint32 = ValueBits + 1, 0
	for _, c := range codes {
		if minBits > c.Len {
			minBits = c.Len
		}
		if maxBits < c.Len {
			maxBits = c.Len
		}
	}

	// Allocate chunks table as needed.
	chunkBits := maxBits
	if chunkBits > maxChunkBits {
		chunkBits = maxChunkBits
	}
	pd.MinBits = minBits
	pd.ChunkBits = chunkBits
	pd.ChunkMask = 1<<chunkBits - 1
	pd.Chunks = allocUint32s(pd.Chunks, 1<<chunkBits)

	// Allocate links tables as needed. Each chunk entry whose codes extend
	// past chunkBits becomes a pointer into a second-level table.
	pd.Links = pd.Links[:0]
	pd.LinkMask = 0
	if maxBits > chunkBits {
		numLinks := uint32(1) << (maxBits - chunkBits)
		pd.LinkMask = numLinks - 1
		for _, c := range codes {
			if c.Len > chunkBits {
				key := c.Val & pd.ChunkMask
				if pd.Chunks[key] == 0 {
					pd.Chunks[key] = uint32(len(pd.Links))<<CountBits | (chunkBits + 1)
					pd.Links = append(pd.Links, allocUint32s(nil, int(numLinks)))
				}
			}
		}
	}

	// Fill out chunks and links tables with the codes. Since the code values
	// are stored in reverse-bit order, a code of length n is replicated at a
	// stride of 1<<n to cover all possible values of the unused upper bits.
	for _, c := range codes {
		chunk := c.Sym<<CountBits | c.Len
		if c.Len <= chunkBits {
			for j := c.Val; j < uint32(len(pd.Chunks)); j += 1 << c.Len {
				pd.Chunks[j] = chunk
			}
		} else {
			link := pd.Links[pd.Chunks[c.Val&pd.ChunkMask]>>CountBits]
			for j := c.Val >> chunkBits; j < uint32(len(link)); j += 1 << (c.Len - chunkBits) {
				link[j] = chunk
			}
		}
	}
}

func allocUint32s(s []uint32, n int) []uint32 {
	if cap(s) >= n {
		s = s[:n]
		for i := range s {
			s[i] = 0
		}
		return s
	}
	return make([]uint32, n, n*3/2)
}
