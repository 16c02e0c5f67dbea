// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package prefix

import "sort"

// Encoder is a prefix encoder lookup table built from a set of canonically
// assigned prefix codes. The zero value is an empty table.
type Encoder struct {
	Chunks  []uint32 // First-level lookup map, keyed by symbol
	NumSyms uint32   // Number of prefix codes
}

// Init initializes the Encoder from the given codes. The codes must have
// canonically assigned values (see GeneratePrefixes). Each entry in Chunks
// is decoded as follows:
//
//	var length = chunks[symbol] & CountMask
//	var value = chunks[symbol] >> CountBits
func (pe *Encoder) Init(codes PrefixCodes) {
	pe.NumSyms = uint32(len(codes))
	if len(codes) == 0 {
		pe.Chunks = pe.Chunks[:0]
		return
	}

	var maxSym uint32
	for _, c := range codes {
		if maxSym < c.Sym {
			maxSym = c.Sym
		}
	}
	pe.Chunks = allocUint32s(pe.Chunks, int(maxSym)+1)
	for _, c := range codes {
		pe.Chunks[c.Sym] = c.Val<<CountBits | c.Len
	}
}

// RangeEncoder is a lookup table for finding the symbol that covers a given
// integer offset in a set of range codes. The zero value is an empty table.
type RangeEncoder struct {
	rcs RangeCodes
}

// Init initializes the RangeEncoder from the given ranges, which must be
// valid according to RangeCodes.checkValid.
func (re *RangeEncoder) Init(rcs RangeCodes) {
	if !rcs.checkValid() {
		panic(errDegenerate)
	}
	re.rcs = rcs
}

// Encode reports the symbol for the last range that covers offset. When
// adjacent ranges overlap, the later range wins, which always selects the
// encoding with the fewest extra bits.
func (re *RangeEncoder) Encode(offset uint) (sym uint) {
	sym = uint(sort.Search(len(re.rcs), func(i int) bool {
		return re.rcs[i].Base > uint32(offset)
	})) - 1
	return sym
}
