// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

// RandRepeats generates a data stream of length n that heavily favors LZ77
// based compression since a large bulk of its data is a copy from some
// distance ago. Since the source data is mostly random, prefix encoding does
// not benefit as much. The output is deterministic for a given seed.
func RandRepeats(n, seed int) []byte {
	var b []byte
	r := NewRand(seed)

	randLen := func() (l int) {
		p := r.Intn(100)
		switch {
		case p < 15: // 4..8
			l = 4 + r.Intn(4)
		case p < 30: // 8..16
			l = 8 + r.Intn(8)
		case p < 45: // 16..32
			l = 16 + r.Intn(16)
		case p < 60: // 32..64
			l = 32 + r.Intn(32)
		case p < 75: // 64..128
			l = 64 + r.Intn(64)
		case p < 90: // 128..256
			l = 128 + r.Intn(128)
		default: // 256..512
			l = 256 + r.Intn(256)
		}
		return l
	}

	randDist := func() (d int) {
		for d == 0 || d > len(b) {
			p := r.Intn(100)
			switch {
			case p < 10: // 1..2
				d = 1 + r.Intn(1)
			case p < 20: // 2..4
				d = 2 + r.Intn(2)
			case p < 30: // 4..8
				d = 4 + r.Intn(4)
			case p < 40: // 8..16
				d = 8 + r.Intn(8)
			case p < 50: // 16..32
				d = 16 + r.Intn(16)
			case p < 55: // 32..64
				d = 32 + r.Intn(32)
			case p < 60: // 64..128
				d = 64 + r.Intn(64)
			case p < 65: // 128..256
				d = 128 + r.Intn(128)
			case p < 70: // 256..512
				d = 256 + r.Intn(256)
			case p < 75: // 512..1024
				d = 512 + r.Intn(512)
			case p < 80: // 1024..2048
				d = 1024 + r.Intn(1024)
			case p < 85: // 2048..4096
				d = 2048 + r.Intn(2048)
			case p < 90: // 4096..8192
				d = 4096 + r.Intn(4096)
			case p < 95: // 8192..16384
				d = 8192 + r.Intn(8192)
			default: // 16384..32768
				d = 16384 + r.Intn(16384)
			}
		}
		return d
	}

	writeRand := func(l int) {
		b = append(b, r.Bytes(l)...)
	}

	writeCopy := func(d, l int) {
		for i := 0; i < l; i++ {
			b = append(b, b[len(b)-d])
		}
	}

	// Floor the initial segment above the maximum match length so that the
	// long-distance branch below can always satisfy d > l with d <= len(b).
	writeRand(512 + randLen())
	for len(b) < n {
		p := r.Intn(100)
		switch {
		case p < 10:
			// Generate random new data.
			writeRand(randLen())
		case p < 90:
			// Write a long distance copy.
			d, l := randDist(), randLen()
			for d <= l {
				d, l = randDist(), randLen()
			}
			writeCopy(d, l)
		default:
			// Write a possibly short distance copy.
			writeCopy(randDist(), randLen())
		}
	}
	return b[:n]
}

// RandText generates length n of vaguely English-shaped text: space separated
// words drawn from a small dictionary with Zipf-ish repetition. It compresses
// well with both LZ77 and prefix encoding. The output is deterministic for a
// given seed.
func RandText(n, seed int) []byte {
	words := []string{
		"the", "of", "and", "a", "to", "in", "is", "you", "that", "it",
		"he", "was", "for", "on", "are", "as", "with", "his", "they", "I",
		"compression", "deflate", "stream", "block", "symbol", "window",
	}
	r := NewRand(seed)
	var b []byte
	for len(b) < n {
		// Favor the head of the dictionary.
		i := r.Intn(len(words))
		if r.Intn(2) == 0 {
			i = r.Intn(10)
		}
		b = append(b, words[i]...)
		if r.Intn(12) == 0 {
			b = append(b, '.', '\n')
		} else {
			b = append(b, ' ')
		}
	}
	return b[:n]
}
