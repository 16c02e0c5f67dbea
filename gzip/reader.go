// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzip

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"time"

	"github.com/fconvert/compress/flate"
)

// IsFormat reports whether data starts with a GZIP header.
func IsFormat(data []byte) bool {
	return len(data) >= 10 && data[0] == magic1 && data[1] == magic2
}

// Decompress expands a whole GZIP file and validates its trailer.
func Decompress(input []byte) ([]byte, error) {
	output, _, err := DecompressHeader(input)
	return output, err
}

// DecompressHeader is like Decompress but also returns the parsed header
// metadata.
func DecompressHeader(input []byte) ([]byte, Header, error) {
	hdr, n, err := parseHeader(input)
	if err != nil {
		return nil, Header{}, err
	}
	if len(input) < n+8 {
		return nil, hdr, ErrUnexpectedEnd
	}

	output, err := flate.Decompress(input[n : len(input)-8])
	if err != nil {
		return output, hdr, err
	}

	trailer := input[len(input)-8:]
	if binary.LittleEndian.Uint32(trailer[0:]) != crc32.ChecksumIEEE(output) {
		return output, hdr, ErrInvalidChecksum
	}
	if binary.LittleEndian.Uint32(trailer[4:]) != uint32(len(output)) {
		return output, hdr, ErrInvalidChecksum
	}
	return output, hdr, nil
}

// parseHeader reads the header at the start of input and reports its length.
func parseHeader(input []byte) (hdr Header, n int, err error) {
	if len(input) < 10 {
		return hdr, 0, ErrUnexpectedEnd
	}
	if input[0] != magic1 || input[1] != magic2 || input[2] != methodDeflate {
		return hdr, 0, ErrInvalidHeader
	}
	flags := input[3]
	if mtime := binary.LittleEndian.Uint32(input[4:]); mtime > 0 {
		hdr.ModTime = time.Unix(int64(mtime), 0)
	}
	hdr.Text = flags&flagText > 0
	hdr.OS = input[9]
	n = 10

	if flags&flagExtra > 0 {
		if len(input) < n+2 {
			return hdr, n, ErrUnexpectedEnd
		}
		xlen := int(binary.LittleEndian.Uint16(input[n:]))
		n += 2
		if len(input) < n+xlen {
			return hdr, n, ErrUnexpectedEnd
		}
		hdr.Extra = input[n : n+xlen : n+xlen]
		n += xlen
	}
	if flags&flagName > 0 {
		if hdr.Name, n, err = parseString(input, n); err != nil {
			return hdr, n, err
		}
	}
	if flags&flagComment > 0 {
		if hdr.Comment, n, err = parseString(input, n); err != nil {
			return hdr, n, err
		}
	}
	if flags&flagHdrCRC > 0 {
		if len(input) < n+2 {
			return hdr, n, ErrUnexpectedEnd
		}
		crc16 := uint16(crc32.ChecksumIEEE(input[:n]))
		if binary.LittleEndian.Uint16(input[n:]) != crc16 {
			return hdr, n, ErrInvalidChecksum
		}
		n += 2
	}
	return hdr, n, nil
}

// parseString reads a NUL-terminated string starting at input[pos].
func parseString(input []byte, pos int) (string, int, error) {
	i := bytes.IndexByte(input[pos:], 0)
	if i < 0 {
		return "", pos, ErrUnexpectedEnd
	}
	return string(input[pos : pos+i]), pos + i + 1, nil
}
