// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	stdflate "compress/flate"
	stdgzip "compress/gzip"
	"io"

	kpflate "github.com/klauspost/compress/flate"
	kpgzip "github.com/klauspost/compress/gzip"

	"github.com/fconvert/compress/flate"
	"github.com/fconvert/compress/gzip"
)

type streamWriter func(w io.Writer, lvl int) (io.WriteCloser, error)
type streamReader func(r io.Reader) (io.ReadCloser, error)

// bufferEncoder adapts a stream-based compressor to the Encoder shape.
func bufferEncoder(newWriter streamWriter) Encoder {
	return func(input []byte, lvl int) ([]byte, error) {
		var buf bytes.Buffer
		zw, err := newWriter(&buf, lvl)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(input); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// bufferDecoder adapts a stream-based decompressor to the Decoder shape.
func bufferDecoder(newReader streamReader) Decoder {
	return func(input []byte) ([]byte, error) {
		zr, err := newReader(bytes.NewReader(input))
		if err != nil {
			return nil, err
		}
		output, err := io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		return output, err
	}
}

func init() {
	RegisterEncoder(FormatFlate, "fc", flate.Compress)
	RegisterDecoder(FormatFlate, "fc", flate.Decompress)
	RegisterEncoder(FormatGZIP, "fc",
		func(input []byte, lvl int) ([]byte, error) {
			return gzip.Compress(input, lvl, "")
		})
	RegisterDecoder(FormatGZIP, "fc", gzip.Decompress)

	RegisterEncoder(FormatFlate, "std", bufferEncoder(
		func(w io.Writer, lvl int) (io.WriteCloser, error) {
			return stdflate.NewWriter(w, lvl)
		}))
	RegisterDecoder(FormatFlate, "std", bufferDecoder(
		func(r io.Reader) (io.ReadCloser, error) {
			return stdflate.NewReader(r), nil
		}))
	RegisterEncoder(FormatGZIP, "std", bufferEncoder(
		func(w io.Writer, lvl int) (io.WriteCloser, error) {
			return stdgzip.NewWriterLevel(w, lvl)
		}))
	RegisterDecoder(FormatGZIP, "std", bufferDecoder(
		func(r io.Reader) (io.ReadCloser, error) {
			return stdgzip.NewReader(r)
		}))

	RegisterEncoder(FormatFlate, "kp", bufferEncoder(
		func(w io.Writer, lvl int) (io.WriteCloser, error) {
			return kpflate.NewWriter(w, lvl)
		}))
	RegisterDecoder(FormatFlate, "kp", bufferDecoder(
		func(r io.Reader) (io.ReadCloser, error) {
			return kpflate.NewReader(r), nil
		}))
	RegisterEncoder(FormatGZIP, "kp", bufferEncoder(
		func(w io.Writer, lvl int) (io.WriteCloser, error) {
			return kpgzip.NewWriterLevel(w, lvl)
		}))
	RegisterDecoder(FormatGZIP, "kp", bufferDecoder(
		func(r io.Reader) (io.ReadCloser, error) {
			return kpgzip.NewReader(r)
		}))
}
