// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/fconvert/compress/internal/prefix"

// The bitReader decodes directly from a byte slice. Bits are consumed in
// LSB-first order through a 64-bit staging buffer, which FeedBits keeps
// filled greedily so that the Try variants usually succeed without bounds
// checks on the hot path.
type bitReader struct {
	data    []byte
	offset  int    // Number of bytes consumed from data
	bufBits uint64 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits

	// Local copy of decoder to reduce memory allocations.
	clenTree prefix.Decoder
}

func (br *bitReader) Init(data []byte) {
	*br = bitReader{data: data, clenTree: br.clenTree}
}

// FeedBits ensures that at least nb bits exist in the bit buffer.
// If the input is exhausted before then, it panics with ErrUnexpectedEnd.
func (br *bitReader) FeedBits(nb uint) {
	for br.numBits < nb {
		if br.offset >= len(br.data) {
			panic(ErrUnexpectedEnd)
		}
		br.bufBits |= uint64(br.data[br.offset]) << br.numBits
		br.numBits += 8
		br.offset++
	}
}

// TryReadBits attempts to read nb bits using the contents of the bit buffer
// alone. It returns the value and whether it succeeded.
//
// This method is designed to be inlined for performance reasons.
func (br *bitReader) TryReadBits(nb uint) (uint, bool) {
	if br.numBits < nb {
		return 0, false
	}
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val, true
}

// ReadBits reads nb bits in LSB order from the underlying buffer.
func (br *bitReader) ReadBits(nb uint) uint {
	br.FeedBits(nb)
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadPads reads 0-7 bits from the bit buffer to achieve byte-alignment.
func (br *bitReader) ReadPads() uint {
	nb := br.numBits % 8
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadBytes copies bytes into buf and reports how many it could supply.
// The bit buffer must be byte-aligned when calling this.
func (br *bitReader) ReadBytes(buf []byte) (cnt int) {
	for cnt < len(buf) && br.numBits > 0 {
		buf[cnt] = byte(br.bufBits)
		br.bufBits >>= 8
		br.numBits -= 8
		cnt++
	}
	n := copy(buf[cnt:], br.data[br.offset:])
	br.offset += n
	return cnt + n
}

// TryReadSymbol attempts to decode the next symbol using the contents of the
// bit buffer alone. It returns the decoded symbol and whether it succeeded.
//
// This method is designed to be inlined for performance reasons.
func (br *bitReader) TryReadSymbol(pd *prefix.Decoder) (uint, bool) {
	if br.numBits < uint(pd.MinBits) || len(pd.Chunks) == 0 {
		return 0, false
	}
	chunk := pd.Chunks[uint32(br.bufBits)&pd.ChunkMask]
	nb := uint(chunk & prefix.CountMask)
	if nb > br.numBits || nb > uint(pd.ChunkBits) {
		return 0, false
	}
	br.bufBits >>= nb
	br.numBits -= nb
	return uint(chunk >> prefix.CountBits), true
}

// ReadSymbol reads the next prefix symbol using the provided prefix.Decoder.
func (br *bitReader) ReadSymbol(pd *prefix.Decoder) uint {
	if len(pd.Chunks) == 0 {
		panic(ErrInvalidHuffmanTable) // Decode with empty tree
	}

	nb := uint(pd.MinBits)
	for {
		br.FeedBits(nb)
		chunk := pd.Chunks[uint32(br.bufBits)&pd.ChunkMask]
		nb = uint(chunk & prefix.CountMask)
		if nb > uint(pd.ChunkBits) {
			linkIdx := chunk >> prefix.CountBits
			chunk = pd.Links[linkIdx][uint32(br.bufBits>>pd.ChunkBits)&pd.LinkMask]
			nb = uint(chunk & prefix.CountMask)
		}
		if nb <= br.numBits {
			br.bufBits >>= nb
			br.numBits -= nb
			return uint(chunk >> prefix.CountBits)
		}
	}
}

// ReadOffset reads an offset value using the provided RangeCodes indexed by
// the given symbol.
func (br *bitReader) ReadOffset(sym uint, rcs prefix.RangeCodes) uint {
	rc := rcs[sym]
	return uint(rc.Base) + br.ReadBits(uint(rc.Len))
}

// ReadPrefixCodes reads the literal and distance prefix codes according to
// RFC section 3.2.7.
func (br *bitReader) ReadPrefixCodes(hl, hd *prefix.Decoder) {
	numLitSyms := br.ReadBits(5) + 257
	numDistSyms := br.ReadBits(5) + 1
	numCLenSyms := br.ReadBits(4) + 4
	if numLitSyms > maxNumLitSyms || numDistSyms > maxNumDistSyms {
		panic(ErrInvalidHuffmanTable)
	}

	// Read the code-lengths prefix table.
	var codeCLensArr [maxNumCLenSyms]prefix.PrefixCode // Sorted, but may have holes
	for _, sym := range clenLens[:numCLenSyms] {
		clen := br.ReadBits(3)
		if clen > 0 {
			codeCLensArr[sym] = prefix.PrefixCode{Sym: uint32(sym), Len: uint32(clen)}
		}
	}
	codeCLens := codeCLensArr[:0] // Compact the array to have no holes
	for _, c := range codeCLensArr {
		if c.Len > 0 {
			codeCLens = append(codeCLens, c)
		}
	}
	codeCLens = handleDegenerateCodes(codeCLens, maxNumCLenSyms)
	if err := prefix.GeneratePrefixes(codeCLens); err != nil {
		panic(ErrInvalidHuffmanTable)
	}
	br.clenTree.Init(codeCLens)

	// Use code-lengths table to decode HLIT and HDIST prefix tables.
	var codesArr [maxNumLitSyms + maxNumDistSyms]prefix.PrefixCode
	var clenLast uint
	codeLits := codesArr[:0]
	codeDists := codesArr[maxNumLitSyms:maxNumLitSyms]
	appendCode := func(sym, clen uint) {
		if sym < numLitSyms {
			pc := prefix.PrefixCode{Sym: uint32(sym), Len: uint32(clen)}
			codeLits = append(codeLits, pc)
		} else {
			pc := prefix.PrefixCode{Sym: uint32(sym - numLitSyms), Len: uint32(clen)}
			codeDists = append(codeDists, pc)
		}
	}
	for sym, maxSyms := uint(0), numLitSyms+numDistSyms; sym < maxSyms; {
		clen := br.ReadSymbol(&br.clenTree)
		if clen < 16 {
			// Literal bit-length symbol used.
			if clen > 0 {
				appendCode(sym, clen)
			}
			clenLast = clen
			sym++
		} else {
			// Repeater symbol used.
			var repCnt uint
			switch repSym := clen; repSym {
			case 16:
				if sym == 0 {
					panic(ErrInvalidHuffmanTable)
				}
				clen = clenLast
				repCnt = 3 + br.ReadBits(2)
			case 17:
				clen = 0
				repCnt = 3 + br.ReadBits(3)
			case 18:
				clen = 0
				repCnt = 11 + br.ReadBits(7)
			default:
				panic(ErrInvalidHuffmanTable)
			}

			if clen > 0 {
				for symEnd := sym + repCnt; sym < symEnd; sym++ {
					appendCode(sym, clen)
				}
			} else {
				sym += repCnt
			}
			if sym > maxSyms {
				panic(ErrInvalidHuffmanTable)
			}
		}
	}

	codeLits = handleDegenerateCodes(codeLits, maxNumLitSyms)
	if err := prefix.GeneratePrefixes(codeLits); err != nil {
		panic(ErrInvalidHuffmanTable)
	}
	hl.Init(codeLits)
	codeDists = handleDegenerateCodes(codeDists, maxNumDistSyms)
	if err := prefix.GeneratePrefixes(codeDists); err != nil {
		panic(ErrInvalidHuffmanTable)
	}
	hd.Init(codeDists)
}

// RFC section 3.2.7 allows degenerate prefix trees with only one node, but
// requires a single bit for that node. This causes an unbalanced tree where
// the "1" code is unused. The canonical prefix code generation algorithm
// breaks with this.
//
// To handle this case, we artificially insert another node for the "1" code
// that uses a symbol larger than the alphabet to force an error later if
// the code ends up getting used.
func handleDegenerateCodes(codes prefix.PrefixCodes, maxSyms uint) prefix.PrefixCodes {
	if len(codes) != 1 {
		return codes
	}
	return append(codes, prefix.PrefixCode{Sym: uint32(maxSyms), Len: 1})
}
