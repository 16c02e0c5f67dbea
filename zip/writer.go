// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package zip

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/fconvert/compress/flate"
)

// Archive encodes files as a ZIP archive. Entries using MethodDeflate are
// compressed at the given level; MethodStored entries are copied verbatim.
func Archive(files []File, level int) ([]byte, error) {
	var out []byte
	offsets := make([]uint32, len(files))
	sums := make([]uint32, len(files))
	sizes := make([]uint32, len(files))

	for i, f := range files {
		if len(f.Name) > math.MaxUint16 {
			return nil, errLongName
		}
		if int64(len(f.Data)) > math.MaxUint32 {
			return nil, errLargeEntry
		}

		data := f.Data
		if f.Method == MethodDeflate {
			var err error
			if data, err = flate.Compress(f.Data, level); err != nil {
				return nil, err
			}
		}
		if int64(len(data)) > math.MaxUint32 {
			return nil, errLargeEntry
		}
		offsets[i] = uint32(len(out))
		sums[i] = crc32.ChecksumIEEE(f.Data)
		sizes[i] = uint32(len(data))

		out = binary.LittleEndian.AppendUint32(out, sigLocalFile)
		out = binary.LittleEndian.AppendUint16(out, 20) // Version 2.0 to extract
		out = binary.LittleEndian.AppendUint16(out, 0)  // General purpose flags
		out = binary.LittleEndian.AppendUint16(out, f.Method)
		out = binary.LittleEndian.AppendUint32(out, dosTime(f.ModTime))
		out = binary.LittleEndian.AppendUint32(out, sums[i])
		out = binary.LittleEndian.AppendUint32(out, sizes[i])
		out = binary.LittleEndian.AppendUint32(out, uint32(len(f.Data)))
		out = binary.LittleEndian.AppendUint16(out, uint16(len(f.Name)))
		out = binary.LittleEndian.AppendUint16(out, 0) // Extra field length
		out = append(out, f.Name...)
		out = append(out, data...)
	}

	dirOffset := uint32(len(out))
	for i, f := range files {
		out = binary.LittleEndian.AppendUint32(out, sigCentralDir)
		out = binary.LittleEndian.AppendUint16(out, 0x031e) // Made by UNIX
		out = binary.LittleEndian.AppendUint16(out, 20)     // Version 2.0 to extract
		out = binary.LittleEndian.AppendUint16(out, 0)      // General purpose flags
		out = binary.LittleEndian.AppendUint16(out, f.Method)
		out = binary.LittleEndian.AppendUint32(out, dosTime(f.ModTime))
		out = binary.LittleEndian.AppendUint32(out, sums[i])
		out = binary.LittleEndian.AppendUint32(out, sizes[i])
		out = binary.LittleEndian.AppendUint32(out, uint32(len(f.Data)))
		out = binary.LittleEndian.AppendUint16(out, uint16(len(f.Name)))
		out = binary.LittleEndian.AppendUint16(out, 0) // Extra field length
		out = binary.LittleEndian.AppendUint16(out, 0) // Comment length
		out = binary.LittleEndian.AppendUint16(out, 0) // Disk number start
		out = binary.LittleEndian.AppendUint16(out, 0) // Internal attributes
		out = binary.LittleEndian.AppendUint32(out, 0) // External attributes
		out = binary.LittleEndian.AppendUint32(out, offsets[i])
		out = append(out, f.Name...)
	}
	dirSize := uint32(len(out)) - dirOffset

	out = binary.LittleEndian.AppendUint32(out, sigEndOfDir)
	out = binary.LittleEndian.AppendUint16(out, 0) // Disk number
	out = binary.LittleEndian.AppendUint16(out, 0) // Directory start disk
	out = binary.LittleEndian.AppendUint16(out, uint16(len(files)))
	out = binary.LittleEndian.AppendUint16(out, uint16(len(files)))
	out = binary.LittleEndian.AppendUint32(out, dirSize)
	out = binary.LittleEndian.AppendUint32(out, dirOffset)
	out = binary.LittleEndian.AppendUint16(out, 0) // Comment length
	return out, nil
}
