// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package gzip implements the GZIP compressed file format,
// described in RFC 1952.
//
// GZIP is a thin container around a single DEFLATE stream, adding a header
// with optional metadata and a trailer holding a CRC-32 checksum and the
// size of the uncompressed data. Like flate, the package operates on whole
// byte slices.
package gzip

import "time"

const (
	magic1 = 0x1f
	magic2 = 0x8b

	methodDeflate = 8

	// Header flag bits (RFC section 2.3.1).
	flagText    = 1 << 0
	flagHdrCRC  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

// Header is the metadata stored in a GZIP file header. String fields must
// hold ISO 8859-1 text and may not contain NUL bytes.
type Header struct {
	Text    bool      // File is likely ASCII text
	Name    string    // Original file name, empty if absent
	Comment string    // File comment, empty if absent
	Extra   []byte    // Raw extra field payload, nil if absent
	ModTime time.Time // Modification time, zero if absent
	OS      byte      // Originating operating system, 255 if unknown
}

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string  { return "gzip: " + string(e) }
func (e Error) CompressError() {}

var (
	// ErrUnexpectedEnd is reported when the input is too short to hold the
	// header or trailer it promises.
	ErrUnexpectedEnd error = Error("unexpected end of stream")

	// ErrInvalidHeader is reported when the magic number, compression
	// method, or header layout is not a valid GZIP header.
	ErrInvalidHeader error = Error("invalid header")

	// ErrInvalidChecksum is reported when a header CRC-16, the trailer
	// CRC-32, or the trailer size field disagrees with the data.
	ErrInvalidChecksum error = Error("invalid checksum")

	errInvalidString error = Error("header string contains NUL byte")
)
