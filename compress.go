// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package compress is a collection of compression codecs and the container
// formats built on top of them.
//
// The flate package implements the DEFLATE compressed data format
// (RFC 1951) and is the compression substrate for everything else in this
// repository. The gzip and zip packages wrap raw DEFLATE streams with their
// respective framing (RFC 1952 and the ZIP application note).
package compress

// Error is the common interface implemented by all errors specific to this
// repository. Each sub-package declares its own concrete error type that
// prefixes messages with the package name.
type Error interface {
	error

	// CompressError is a marker method to distinguish errors produced by
	// this repository from arbitrary errors flowing through it.
	CompressError()
}
