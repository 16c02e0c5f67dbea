// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/fconvert/compress/internal/prefix"

// ReaderConfig configures decompression of untrusted input.
type ReaderConfig struct {
	// MaxOutputSize, if positive, bounds the total number of decompressed
	// bytes. DEFLATE streams can expand over a thousandfold, so callers
	// feeding attacker-controlled data should always set this.
	MaxOutputSize int
}

type decompressor struct {
	rd      bitReader
	out     []byte
	maxSize int

	// Active trees for the current block. For fixed blocks these alias the
	// package-level tables; for dynamic blocks they point at the local pair
	// below so that the fixed tables are never overwritten.
	litTree  *prefix.Decoder
	distTree *prefix.Decoder

	dynLitTree  prefix.Decoder
	dynDistTree prefix.Decoder
}

// Decompress expands a whole DEFLATE stream. It returns the decompressed
// bytes up to the point of failure, along with any error encountered.
func Decompress(input []byte) ([]byte, error) {
	return DecompressWith(input, nil)
}

// DecompressWith is like Decompress with explicit configuration.
// A nil conf is treated as the zero value.
func DecompressWith(input []byte, conf *ReaderConfig) (output []byte, err error) {
	defer errRecover(&err)

	var fr decompressor
	// Whatever was decoded before a failure is still returned to the
	// caller. This runs before errRecover on the panic path.
	defer func() { output = fr.out }()

	fr.rd.Init(input)
	if conf != nil {
		fr.maxSize = conf.MaxOutputSize
	}

	for {
		last := fr.rd.ReadBits(1) == 1
		switch fr.rd.ReadBits(2) {
		case 0:
			// Raw block (RFC section 3.2.4).
			fr.readRawBlock()
		case 1:
			// Fixed prefix block (RFC section 3.2.6).
			fr.litTree, fr.distTree = &litTree, &distTree
			fr.readBlock()
		case 2:
			// Dynamic prefix block (RFC section 3.2.7).
			fr.rd.ReadPrefixCodes(&fr.dynLitTree, &fr.dynDistTree)
			fr.litTree, fr.distTree = &fr.dynLitTree, &fr.dynDistTree
			fr.readBlock()
		default:
			// Reserved block (RFC section 3.2.3).
			panic(ErrInvalidBlockType)
		}
		if last {
			return fr.out, nil
		}
	}
}

// checkSize panics if producing n more bytes would exceed the output limit.
func (fr *decompressor) checkSize(n int) {
	if fr.maxSize > 0 && len(fr.out)+n > fr.maxSize {
		panic(ErrOutputLimit)
	}
}

// readRawBlock reads raw data according to RFC section 3.2.4.
func (fr *decompressor) readRawBlock() {
	fr.rd.ReadPads()
	n := uint16(fr.rd.ReadBits(16))
	nn := uint16(fr.rd.ReadBits(16))
	if n^nn != 0xffff {
		panic(ErrInvalidStoredLength)
	}

	fr.checkSize(int(n))
	fr.out = append(fr.out, make([]byte, n)...)
	buf := fr.out[len(fr.out)-int(n):]
	if cnt := fr.rd.ReadBytes(buf); cnt < len(buf) {
		fr.out = fr.out[:len(fr.out)-len(buf)+cnt]
		panic(ErrUnexpectedEnd)
	}
}

// readBlock reads block commands according to RFC section 3.2.3.
func (fr *decompressor) readBlock() {
	for {
		// Read the literal symbol.
		litSym, ok := fr.rd.TryReadSymbol(fr.litTree)
		if !ok {
			litSym = fr.rd.ReadSymbol(fr.litTree)
		}
		switch {
		case litSym < endBlockSym:
			fr.checkSize(1)
			fr.out = append(fr.out, byte(litSym))
		case litSym == endBlockSym:
			return
		case litSym < maxNumLitSyms:
			// Decode the copy length.
			extra, ok := fr.rd.TryReadBits(uint(lenRanges[litSym-257].Len))
			if !ok {
				extra = fr.rd.ReadBits(uint(lenRanges[litSym-257].Len))
			}
			cpyLen := int(lenRanges[litSym-257].Base) + int(extra)

			// Read the distance symbol.
			distSym, ok := fr.rd.TryReadSymbol(fr.distTree)
			if !ok {
				distSym = fr.rd.ReadSymbol(fr.distTree)
			}
			if distSym >= maxNumDistSyms {
				panic(ErrInvalidBackReference)
			}

			// Decode the copy distance.
			extra, ok = fr.rd.TryReadBits(uint(distRanges[distSym].Len))
			if !ok {
				extra = fr.rd.ReadBits(uint(distRanges[distSym].Len))
			}
			dist := int(distRanges[distSym].Base) + int(extra)

			fr.writeCopy(dist, cpyLen)
		default:
			// Symbols 286 and 287 are never valid, and neither is the
			// padding node of a degenerate tree.
			panic(ErrInvalidHuffmanTable)
		}
	}
}

// writeCopy performs a backwards copy according to RFC section 3.2.3.
func (fr *decompressor) writeCopy(dist, length int) {
	if dist > len(fr.out) {
		panic(ErrInvalidBackReference)
	}
	fr.checkSize(length)

	// The source may overlap the destination; the RFC requires that such
	// copies replicate the leading bytes, so copy one byte at a time.
	pos := len(fr.out) - dist
	for i := 0; i < length; i++ {
		fr.out = append(fr.out, fr.out[pos+i])
	}
}
