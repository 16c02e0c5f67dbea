// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/fconvert/compress/internal/prefix"

const maxPrefixBits = 15

const (
	maxNumCLenSyms = 19
	maxNumLitSyms  = 286
	maxNumDistSyms = 30
)

var (
	lenRanges  prefix.RangeCodes // RFC section 3.2.5, indexed by litSym-257
	distRanges prefix.RangeCodes // RFC section 3.2.5, indexed by distSym

	// Fixed prefix trees from RFC section 3.2.6, both directions.
	litTree  prefix.Decoder
	distTree prefix.Decoder
	litEnc   prefix.Encoder
	distEnc  prefix.Encoder

	// Offset-to-symbol maps for the encode side.
	lenEnc prefix.RangeEncoder
	dstEnc prefix.RangeEncoder

	// RFC section 3.2.7.
	// Prefix code lengths for code lengths alphabet.
	clenLens = [maxNumCLenSyms]uint{
		16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
	}
)

func initPrefixLUTs() {
	// These come from the RFC section 3.2.5.
	lenRanges = append(prefix.MakeRangeCodes(3, []uint{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5,
	}), prefix.RangeCode{Base: 258, Len: 0})
	distRanges = prefix.MakeRangeCodes(1, []uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	})

	// These come from the RFC section 3.2.6.
	litCodes := make(prefix.PrefixCodes, 288)
	for i := 0; i < 144; i++ {
		litCodes[i] = prefix.PrefixCode{Sym: uint32(i), Len: 8}
	}
	for i := 144; i < 256; i++ {
		litCodes[i] = prefix.PrefixCode{Sym: uint32(i), Len: 9}
	}
	for i := 256; i < 280; i++ {
		litCodes[i] = prefix.PrefixCode{Sym: uint32(i), Len: 7}
	}
	for i := 280; i < 288; i++ {
		litCodes[i] = prefix.PrefixCode{Sym: uint32(i), Len: 8}
	}
	if err := prefix.GeneratePrefixes(litCodes); err != nil {
		panic(err)
	}
	litTree.Init(litCodes)
	litEnc.Init(litCodes)

	// These come from the RFC section 3.2.6.
	distCodes := make(prefix.PrefixCodes, 32)
	for i := 0; i < 32; i++ {
		distCodes[i] = prefix.PrefixCode{Sym: uint32(i), Len: 5}
	}
	if err := prefix.GeneratePrefixes(distCodes); err != nil {
		panic(err)
	}
	distTree.Init(distCodes)
	distEnc.Init(distCodes)

	lenEnc.Init(lenRanges)
	dstEnc.Init(distRanges)
}
