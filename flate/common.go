// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package flate implements the DEFLATE compressed data format,
// described in RFC 1951.
//
// The package operates on whole byte slices: Compress encodes a buffer into
// a self-contained DEFLATE stream, and Decompress expands one back. There is
// no streaming interface.
package flate

import "runtime"

const (
	maxHistSize = 1 << 15
	endBlockSym = 256

	minMatchLen = 3
	maxMatchLen = 258

	maxRawBlockSize = 1<<16 - 1
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string  { return "flate: " + string(e) }
func (e Error) CompressError() {}

var (
	// ErrUnexpectedEnd is reported when the input ends in the middle of a
	// block, a prefix code, or the stored data it promised.
	ErrUnexpectedEnd error = Error("unexpected end of stream")

	// ErrInvalidBlockType is reported for the reserved block type 3.
	ErrInvalidBlockType error = Error("invalid block type")

	// ErrInvalidHuffmanTable is reported when a dynamic block carries a
	// code length set that does not describe a valid prefix tree, or when
	// a decoded symbol falls outside its alphabet.
	ErrInvalidHuffmanTable error = Error("invalid huffman table")

	// ErrInvalidStoredLength is reported when a stored block's LEN and NLEN
	// fields are not one's complements of each other.
	ErrInvalidStoredLength error = Error("invalid stored block length")

	// ErrInvalidBackReference is reported when a back-reference points
	// before the start of the output or uses a reserved distance symbol.
	ErrInvalidBackReference error = Error("invalid back reference")

	// ErrOutputLimit is reported when decompression would exceed the
	// configured maximum output size.
	ErrOutputLimit error = Error("output size limit exceeded")

	errInvalidLevel error = Error("invalid compression level")
	errInputTooBig  error = Error("input exceeds maximum supported size")
)

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

func init() {
	initPrefixLUTs()
}
