// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"bytes"
	"testing"

	"github.com/fconvert/compress/internal/testutil"
)

func TestCompressLevels(t *testing.T) {
	for _, lvl := range []int{-2, -1, 10, 11} {
		if _, err := Compress(nil, lvl); err != errInvalidLevel {
			t.Errorf("level %d, error mismatch: got %v, want %v", lvl, err, errInvalidLevel)
		}
	}
	for lvl := 0; lvl <= 9; lvl++ {
		if _, err := Compress(nil, lvl); err != nil {
			t.Errorf("level %d, unexpected Compress error: %v", lvl, err)
		}
	}
}

func TestCompressStored(t *testing.T) {
	dh := testutil.MustDecodeHex

	var vectors = []struct {
		desc   string
		input  []byte
		output []byte
	}{{
		desc:   "empty input",
		output: dh("010000ffff"),
	}, {
		desc:   "single byte",
		input:  dh("7a"),
		output: dh("010100feff7a"),
	}, {
		desc:   "several bytes",
		input:  []byte("hello, world"),
		output: append(dh("010c00f3ff"), "hello, world"...),
	}}

	for i, v := range vectors {
		output, err := Compress(v.input, 0)
		if err != nil {
			t.Errorf("test %d, %s, unexpected Compress error: %v", i, v.desc, err)
		}
		if !bytes.Equal(output, v.output) {
			t.Errorf("test %d, %s, output mismatch:\ngot  %x\nwant %x", i, v.desc, output, v.output)
		}
	}
}

// TestCompressStoredBound checks that level 0 splits oversized inputs into
// multiple blocks and never expands beyond the 5-byte per-block framing.
func TestCompressStoredBound(t *testing.T) {
	for _, n := range []int{maxRawBlockSize - 1, maxRawBlockSize, maxRawBlockSize + 1, 3 * maxRawBlockSize} {
		input := testutil.NewRand(n).Bytes(n)
		data, err := Compress(input, 0)
		if err != nil {
			t.Fatalf("size %d, unexpected Compress error: %v", n, err)
		}

		numBlocks := 1 + n/maxRawBlockSize
		if maxLen := n + 5*numBlocks; len(data) > maxLen {
			t.Errorf("size %d, output too large: got %d, want <= %d", n, len(data), maxLen)
		}
		output, err := Decompress(data)
		if err != nil {
			t.Fatalf("size %d, unexpected Decompress error: %v", n, err)
		}
		if !bytes.Equal(output, input) {
			t.Errorf("size %d, output data mismatch", n)
		}
	}
}

// TestCompressDeterministic checks that identical inputs always produce
// identical streams, and that higher effort levels do not hurt ratio on
// highly repetitive data.
func TestCompressDeterministic(t *testing.T) {
	input := testutil.RandRepeats(1<<18, 7)

	var prevSize int
	for lvl := 1; lvl <= 9; lvl++ {
		data1, err := Compress(input, lvl)
		if err != nil {
			t.Fatalf("level %d, unexpected Compress error: %v", lvl, err)
		}
		data2, err := Compress(input, lvl)
		if err != nil {
			t.Fatalf("level %d, unexpected Compress error: %v", lvl, err)
		}
		if !bytes.Equal(data1, data2) {
			t.Errorf("level %d, stream is not deterministic", lvl)
		}
		if len(data1) >= len(input) {
			t.Errorf("level %d, repetitive data did not compress: got %d, want < %d", lvl, len(data1), len(input))
		}
		if prevSize > 0 && len(data1) > 2*prevSize {
			t.Errorf("level %d, ratio regressed sharply: got %d, previous level %d", lvl, len(data1), prevSize)
		}
		prevSize = len(data1)
	}
}

func TestMatchLen(t *testing.T) {
	var vectors = []struct {
		a, b string
		n    int
	}{
		{"", "", 0},
		{"a", "", 0},
		{"ab", "ab", 2},
		{"abc", "abd", 2},
		{"0123456789", "0123456789", 10},
		{"0123456789abcdef", "0123456789abcdeX", 15},
		{"0123456789abcdef0123456789abcdef", "0123456789abcdef0123456789abcdXX", 30},
	}

	for i, v := range vectors {
		if n := matchLen([]byte(v.a), []byte(v.b)); n != v.n {
			t.Errorf("test %d, matchLen(%q, %q) mismatch: got %d, want %d", i, v.a, v.b, n, v.n)
		}
	}
}
