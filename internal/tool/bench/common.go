// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares the performance of various compression
// implementations with respect to encode speed, decode speed, and ratio.
// Inputs are generated corpora rather than files on disk, so results are
// reproducible across machines.
package bench

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/dsnet/golib/unitconv"

	"github.com/fconvert/compress/internal/testutil"
)

const (
	FormatFlate = iota
	FormatGZIP
)

const (
	TestEncodeRate = iota
	TestDecodeRate
	TestCompressRatio
)

// Encoder and Decoder operate on whole buffers, matching the API shape of
// the codecs in this repository. Stream-based implementations are wrapped.
type Encoder func(input []byte, level int) ([]byte, error)
type Decoder func(input []byte) ([]byte, error)

var (
	Encoders map[int]map[string]Encoder
	Decoders map[int]map[string]Decoder
)

func RegisterEncoder(format int, name string, enc Encoder) {
	if Encoders == nil {
		Encoders = make(map[int]map[string]Encoder)
	}
	if Encoders[format] == nil {
		Encoders[format] = make(map[string]Encoder)
	}
	Encoders[format][name] = enc
}

func RegisterDecoder(format int, name string, dec Decoder) {
	if Decoders == nil {
		Decoders = make(map[int]map[string]Decoder)
	}
	if Decoders[format] == nil {
		Decoders[format] = make(map[string]Decoder)
	}
	Decoders[format][name] = dec
}

// Corpora lists the named input generators available to the benchmarks.
var Corpora = []string{"zeros", "random", "repeats", "text"}

// LoadCorpus generates n bytes of the named corpus.
func LoadCorpus(name string, n int) ([]byte, error) {
	switch name {
	case "zeros":
		return make([]byte, n), nil
	case "random":
		return testutil.NewRand(0).Bytes(n), nil
	case "repeats":
		return testutil.RandRepeats(n, 0), nil
	case "text":
		return testutil.RandText(n, 0), nil
	default:
		return nil, fmt.Errorf("unknown corpus: %q", name)
	}
}

// BenchmarkEncoder benchmarks a single encoder on the given input data using
// the selected compression level and reports the result.
func BenchmarkEncoder(input []byte, enc Encoder, lvl int) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if enc == nil {
			b.Fatalf("unexpected error: nil Encoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			if _, err := enc(input, lvl); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(len(input)))
		}
	})
}

type Result struct {
	R float64 // Rate (MB/s) or ratio (rawSize/compSize)
	D float64 // Delta ratio relative to primary benchmark
}

// BenchmarkEncoderSuite runs multiple benchmarks across all encoder
// implementations, corpora, levels, and sizes.
//
// The values returned have the following structure:
//	results: [len(corpora)*len(levels)*len(sizes)][len(encs)]Result
//	names:   [len(corpora)*len(levels)*len(sizes)]string
func BenchmarkEncoderSuite(format int, encs, corpora []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(encs, corpora, levels, sizes, tick,
		func(input []byte, enc string, lvl int) Result {
			result := BenchmarkEncoder(input, Encoders[format][enc], lvl)
			if result.N == 0 {
				return Result{}
			}
			us := (float64(result.T.Nanoseconds()) / 1e3) / float64(result.N)
			rate := float64(result.Bytes) / us
			return Result{R: rate}
		})
}

// BenchmarkDecoder benchmarks a single decoder on the given pre-compressed
// input data and reports the result.
func BenchmarkDecoder(input []byte, dec Decoder) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if dec == nil {
			b.Fatalf("unexpected error: nil Decoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			output, err := dec(input)
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(len(output)))
		}
	})
}

// BenchmarkDecoderSuite runs multiple benchmarks across all decoder
// implementations, corpora, levels, and sizes. The same reference encoder
// produces the pre-compressed data for all trials so that results are
// comparable.
//
// The values returned have the following structure:
//	results: [len(corpora)*len(levels)*len(sizes)][len(decs)]Result
//	names:   [len(corpora)*len(levels)*len(sizes)]string
func BenchmarkDecoderSuite(format int, decs, corpora []string, levels, sizes []int, ref Encoder, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(decs, corpora, levels, sizes, tick,
		func(input []byte, dec string, lvl int) Result {
			output, err := ref(input, lvl)
			if err != nil {
				return Result{}
			}

			result := BenchmarkDecoder(output, Decoders[format][dec])
			if result.N == 0 {
				return Result{}
			}
			us := (float64(result.T.Nanoseconds()) / 1e3) / float64(result.N)
			rate := float64(result.Bytes) / us
			return Result{R: rate}
		})
}

// BenchmarkRatioSuite runs multiple benchmarks across all encoder
// implementations, corpora, levels, and sizes.
//
// The values returned have the following structure:
//	results: [len(corpora)*len(levels)*len(sizes)][len(encs)]Result
//	names:   [len(corpora)*len(levels)*len(sizes)]string
func BenchmarkRatioSuite(format int, encs, corpora []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(encs, corpora, levels, sizes, tick,
		func(input []byte, enc string, lvl int) Result {
			output, err := Encoders[format][enc](input, lvl)
			if err != nil {
				return Result{}
			}
			ratio := float64(len(input)) / float64(len(output))
			return Result{R: ratio}
		})
}

type benchFunc func(input []byte, codec string, level int) Result

func benchmarkSuite(codecs, corpora []string, levels, sizes []int, tick func(), run benchFunc) ([][]Result, []string) {
	// Allocate buffers for the result.
	d0 := len(corpora) * len(levels) * len(sizes)
	d1 := len(codecs)
	results := make([][]Result, d0)
	for i := range results {
		results[i] = make([]Result, d1)
	}
	names := make([]string, d0)

	// Run the benchmark for every codec, corpus, level, and size.
	var i int
	for _, f := range corpora {
		for _, l := range levels {
			for _, n := range sizes {
				b, err := LoadCorpus(f, n)
				name := getName(f, l, len(b))
				for j, c := range codecs {
					if tick != nil {
						tick()
					}
					names[i] = name
					if err == nil {
						results[i][j] = run(b, c, l)
					}
					results[i][j].D = results[i][j].R / results[i][0].R
				}
				i++
			}
		}
	}
	return results, names
}

func getName(f string, l, n int) string {
	var sn string
	switch n {
	case 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12:
		sn = fmt.Sprintf("%de%d", 1, numDigits(n)-1)
	default:
		s := unitconv.FormatPrefix(float64(n), unitconv.Base1024, 2)
		sn = strings.Replace(s, ".00", "", -1)
	}
	return fmt.Sprintf("%s:%d:%s", f, l, sn)
}

func numDigits(n int) (d int) {
	for ; n > 0; n /= 10 {
		d++
	}
	return d
}
