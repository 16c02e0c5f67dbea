// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzip

import (
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/fconvert/compress/flate"
)

// Compress encodes input as a GZIP file. The optional name, if non-empty, is
// stored in the header as the original file name. The level has the same
// meaning as in flate.Compress.
func Compress(input []byte, level int, name string) ([]byte, error) {
	return CompressHeader(input, level, Header{Name: name, OS: 0xff})
}

// CompressHeader is like Compress with full control over the header
// metadata. The modification time is stored with second granularity;
// a zero ModTime is encoded as absent per RFC section 2.3.1.
func CompressHeader(input []byte, level int, hdr Header) ([]byte, error) {
	if strings.IndexByte(hdr.Name, 0) >= 0 || strings.IndexByte(hdr.Comment, 0) >= 0 {
		return nil, errInvalidString
	}

	data, err := flate.Compress(input, level)
	if err != nil {
		return nil, err
	}

	var flags byte
	if hdr.Text {
		flags |= flagText
	}
	if hdr.Extra != nil {
		flags |= flagExtra
	}
	if hdr.Name != "" {
		flags |= flagName
	}
	if hdr.Comment != "" {
		flags |= flagComment
	}

	var mtime uint32
	if !hdr.ModTime.IsZero() {
		mtime = uint32(hdr.ModTime.Unix())
	}

	out := make([]byte, 0, 10+len(hdr.Name)+len(hdr.Comment)+len(hdr.Extra)+len(data)+8)
	out = append(out, magic1, magic2, methodDeflate, flags)
	out = binary.LittleEndian.AppendUint32(out, mtime)
	out = append(out, extraFlags(level), hdr.OS)
	if hdr.Extra != nil {
		out = binary.LittleEndian.AppendUint16(out, uint16(len(hdr.Extra)))
		out = append(out, hdr.Extra...)
	}
	if hdr.Name != "" {
		out = append(out, hdr.Name...)
		out = append(out, 0)
	}
	if hdr.Comment != "" {
		out = append(out, hdr.Comment...)
		out = append(out, 0)
	}

	out = append(out, data...)
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(input))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(input)))
	return out, nil
}

// extraFlags reports the XFL header byte (RFC section 2.3.1).
func extraFlags(level int) byte {
	switch level {
	case 9:
		return 2 // Maximum compression
	case 1:
		return 4 // Fastest
	default:
		return 0
	}
}
