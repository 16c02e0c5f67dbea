// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package zip

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/fconvert/compress/flate"
)

// IsFormat reports whether data starts with a ZIP signature. An archive with
// no entries begins directly with the end-of-central-directory record.
func IsFormat(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	sig := binary.LittleEndian.Uint32(data)
	return sig == sigLocalFile || sig == sigEndOfDir
}

// Extract decodes all entries of a ZIP archive. Entries using a compression
// method other than stored or deflate are skipped.
func Extract(input []byte) ([]File, error) {
	dirOffset, numFiles, err := findDirectory(input)
	if err != nil {
		return nil, err
	}

	var files []File
	pos := int(dirOffset)
	for i := 0; i < numFiles; i++ {
		if pos+lenCentralDir > len(input) {
			return files, ErrUnexpectedEnd
		}
		rec := input[pos:]
		if binary.LittleEndian.Uint32(rec) != sigCentralDir {
			return files, ErrInvalidFormat
		}
		method := binary.LittleEndian.Uint16(rec[10:])
		modTime := binary.LittleEndian.Uint32(rec[12:])
		wantSum := binary.LittleEndian.Uint32(rec[16:])
		compSize := int(binary.LittleEndian.Uint32(rec[20:]))
		rawSize := int(binary.LittleEndian.Uint32(rec[24:]))
		nameLen := int(binary.LittleEndian.Uint16(rec[28:]))
		extraLen := int(binary.LittleEndian.Uint16(rec[30:]))
		commentLen := int(binary.LittleEndian.Uint16(rec[32:]))
		hdrOffset := int(binary.LittleEndian.Uint32(rec[42:]))

		pos += lenCentralDir
		if pos+nameLen > len(input) {
			return files, ErrUnexpectedEnd
		}
		name := string(input[pos : pos+nameLen])
		pos += nameLen + extraLen + commentLen

		if method != MethodStored && method != MethodDeflate {
			continue
		}
		data, err := readEntry(input, hdrOffset, method, compSize)
		if err != nil {
			return files, err
		}
		if crc32.ChecksumIEEE(data) != wantSum || len(data) != rawSize {
			return files, ErrInvalidChecksum
		}

		files = append(files, File{
			Name:    name,
			Data:    data,
			Method:  method,
			ModTime: civilTime(modTime),
		})
	}
	return files, nil
}

// findDirectory locates the end-of-central-directory record, scanning
// backwards to step over a trailing archive comment.
func findDirectory(input []byte) (dirOffset uint32, numFiles int, err error) {
	if len(input) < lenEndOfDir {
		return 0, 0, ErrUnexpectedEnd
	}
	for i := len(input) - lenEndOfDir; i >= 0; i-- {
		if binary.LittleEndian.Uint32(input[i:]) != sigEndOfDir {
			continue
		}
		numFiles = int(binary.LittleEndian.Uint16(input[i+10:]))
		dirOffset = binary.LittleEndian.Uint32(input[i+16:])
		return dirOffset, numFiles, nil
	}
	return 0, 0, ErrInvalidFormat
}

// readEntry locates an entry's data through its local file header and
// returns the uncompressed contents.
func readEntry(input []byte, hdrOffset int, method uint16, compSize int) ([]byte, error) {
	if hdrOffset+lenLocalFile > len(input) {
		return nil, ErrUnexpectedEnd
	}
	hdr := input[hdrOffset:]
	if binary.LittleEndian.Uint32(hdr) != sigLocalFile {
		return nil, ErrInvalidFormat
	}
	nameLen := int(binary.LittleEndian.Uint16(hdr[26:]))
	extraLen := int(binary.LittleEndian.Uint16(hdr[28:]))

	dataOffset := hdrOffset + lenLocalFile + nameLen + extraLen
	if dataOffset+compSize > len(input) {
		return nil, ErrUnexpectedEnd
	}
	data := input[dataOffset : dataOffset+compSize]

	if method == MethodDeflate {
		return flate.Decompress(data)
	}
	return append([]byte(nil), data...), nil
}
