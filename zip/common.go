// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package zip implements the PKZIP archive format over DEFLATE.
//
// Only the subset of the format needed for whole-buffer archives is
// supported: single-disk archives with stored or deflated entries, no
// encryption, no ZIP64. Archive produces the local file headers, entry
// data, central directory, and end-of-central-directory record; Extract
// walks the central directory back into files.
package zip

import "time"

const (
	sigLocalFile  = 0x04034b50
	sigCentralDir = 0x02014b50
	sigEndOfDir   = 0x06054b50

	lenLocalFile  = 30
	lenCentralDir = 46
	lenEndOfDir   = 22
)

// Compression methods for File.Method.
const (
	MethodStored  uint16 = 0
	MethodDeflate uint16 = 8
)

// File is a single archive member. Data always holds the uncompressed
// contents; compression happens inside Archive and Extract.
type File struct {
	Name    string
	Data    []byte
	Method  uint16    // MethodStored or MethodDeflate
	ModTime time.Time // Stored with MS-DOS 2-second granularity
}

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string  { return "zip: " + string(e) }
func (e Error) CompressError() {}

var (
	// ErrInvalidFormat is reported when the end-of-central-directory
	// record or a header signature cannot be found where promised.
	ErrInvalidFormat error = Error("invalid archive format")

	// ErrUnexpectedEnd is reported when a header or entry extends past
	// the end of the input.
	ErrUnexpectedEnd error = Error("unexpected end of archive")

	// ErrInvalidChecksum is reported when an extracted entry does not
	// match the CRC-32 or sizes recorded for it.
	ErrInvalidChecksum error = Error("invalid checksum")

	errLongName   error = Error("file name too long")
	errLargeEntry error = Error("entry exceeds 4 GiB limit")
)

// dosTime converts t to the packed MS-DOS date and time format used by ZIP
// headers. The zero time maps to the zero field value.
func dosTime(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	date := uint32(t.Year()-1980)<<9 | uint32(t.Month())<<5 | uint32(t.Day())
	clock := uint32(t.Hour())<<11 | uint32(t.Minute())<<5 | uint32(t.Second()/2)
	return date<<16 | clock
}

// civilTime converts a packed MS-DOS date and time back to a time.Time.
func civilTime(v uint32) time.Time {
	if v == 0 {
		return time.Time{}
	}
	date, clock := v>>16, v&0xffff
	return time.Date(
		int(date>>9)+1980, time.Month(date>>5&0xf), int(date&0x1f),
		int(clock>>11), int(clock>>5&0x3f), int(clock&0x1f)*2,
		0, time.UTC)
}
