// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package prefix implements bit readers and writers that use prefix encoding.
//
// The sub-packages of this repository share a single representation for
// canonical prefix (Huffman) codes: a symbol, the bit-length of its code, and
// the code value stored in bit-reversed order so that a reader consuming the
// least-significant bit of the stream first can index lookup tables directly.
package prefix

import (
	"sort"

	"github.com/fconvert/compress/internal"
)

const (
	// CountBits is the number of bits used to store the bit-length of a
	// prefix code inside a decoder chunk or encoder entry.
	CountBits = 5

	// ValueBits is the number of bits available to store the symbol or the
	// code value in a chunk. It bounds the size of any alphabet.
	ValueBits = 27

	// CountMask masks off the bit-length stored in a chunk.
	CountMask = (1 << CountBits) - 1
)

var (
	errSorted     = internal.Error("prefix: symbols are not sorted")
	errCounts     = internal.Error("prefix: counts are not sorted")
	errUnique     = internal.Error("prefix: symbols are not unique")
	errDegenerate = internal.Error("prefix: degenerate prefix tree")
	errSubscribed = internal.Error("prefix: tree is under- or over-subscribed")
	errLarge      = internal.Error("prefix: alphabet too large for bit-length limit")
	errLength     = internal.Error("prefix: bit-length out of range")
)

// PrefixCode is a representation of a prefix code, which is its symbol,
// the number of times the symbol is used (encode side only), the bit-length
// of the code, and its value.
//
// The Val field is stored in reverse-bit order, matching the bit order that
// RFC 1951 style formats transmit codes in.
type PrefixCode struct {
	Sym uint32 // The symbol being mapped
	Cnt uint32 // The number times this symbol is used
	Len uint32 // Bit-length of the prefix code
	Val uint32 // Value of the prefix code (in reverse-bit order)
}

// PrefixCodes is a list of prefix codes.
type PrefixCodes []PrefixCode

func (pc PrefixCodes) SortByCount() {
	sort.SliceStable(pc, func(i, j int) bool { return pc[i].Cnt < pc[j].Cnt })
}

func (pc PrefixCodes) SortBySymbol() {
	sort.SliceStable(pc, func(i, j int) bool { return pc[i].Sym < pc[j].Sym })
}

// Length computes the total bit-length of the encoded symbol stream, which is
// the weighted sum of every code length by its use count.
func (pc PrefixCodes) Length() (nb uint) {
	for _, c := range pc {
		nb += uint(c.Cnt * c.Len)
	}
	return nb
}

// checkLengths reports whether the codes form a complete prefix tree.
// A degenerate single-code tree (one code of length 1) is also accepted
// since RFC 1951 section 3.2.7 permits transmitting one.
func (pc PrefixCodes) checkLengths() bool {
	if len(pc) == 0 {
		return true
	}
	if len(pc) == 1 && pc[0].Len <= 1 {
		return true
	}

	// Compute the left-over Kraft budget, scaled to the longest code.
	var maxLen uint32
	for _, c := range pc {
		if maxLen < c.Len {
			maxLen = c.Len
		}
	}
	var sum uint64
	for _, c := range pc {
		if c.Len == 0 || c.Len > maxLen {
			return false
		}
		sum += uint64(1) << (maxLen - c.Len)
	}
	return sum == uint64(1)<<maxLen
}

// checkPrefixes reports whether all codes have non-overlapping prefixes.
func (pc PrefixCodes) checkPrefixes() bool {
	for i, c1 := range pc {
		for j, c2 := range pc {
			mask := uint32(1)<<c1.Len - 1
			if i != j && c1.Len <= c2.Len && c1.Val&mask == c2.Val&mask {
				return false
			}
		}
	}
	return true
}

// checkCanonical reports whether the code values follow the canonical
// assignment rule of RFC 1951 section 3.2.2: recompute the expected value of
// every code from the length histogram and compare.
func (pc PrefixCodes) checkCanonical() bool {
	var bitCnts, nextCodes [1 << CountBits]uint32
	var minBits, maxBits uint32 = 1 << CountBits, 0
	for _, c := range pc {
		if c.Len == 0 || c.Len >= 1<<CountBits {
			return false
		}
		if minBits > c.Len {
			minBits = c.Len
		}
		if maxBits < c.Len {
			maxBits = c.Len
		}
		bitCnts[c.Len]++
	}
	var code uint32
	for i := minBits; i <= maxBits; i++ {
		code <<= 1
		nextCodes[i] = code
		code += bitCnts[i]
	}
	for _, c := range pc {
		if c.Val != internal.ReverseUint32N(nextCodes[c.Len], uint(c.Len)) {
			return false
		}
		nextCodes[c.Len]++
	}
	return true
}

// GenerateLengths assigns non-zero bit-lengths to all codes, such that the
// expected code length is minimized and no code is longer than maxBits.
// Symbols with a zero count still receive a code so that every symbol in the
// alphabet remains encodable; callers that want them excluded must filter the
// list beforehand. The input codes must be sorted in ascending order by
// count.
//
// The lengths are produced by building an unconstrained Huffman tree and then
// redistributing any lengths that exceed maxBits using the standard bit-count
// rebalancing adjustment, which preserves the Kraft inequality.
func GenerateLengths(codes PrefixCodes, maxBits uint) error {
	for i := 1; i < len(codes); i++ {
		if codes[i-1].Cnt > codes[i].Cnt {
			return errCounts
		}
	}

	switch n := len(codes); {
	case n == 0:
		return nil
	case n == 1:
		codes[0].Len = 1
		return nil
	case uint(n) > 1<<maxBits || maxBits >= 1<<CountBits:
		return errLarge
	}

	// Build the Huffman tree with the two-queue method, relying on the input
	// being sorted so that both queues are non-decreasing.
	n := len(codes)
	cnts := make([]uint64, n, 2*n-1)
	parent := make([]int, 2*n-1)
	for i, c := range codes {
		cnts[i] = uint64(c.Cnt)
	}
	li, ni := 0, n
	pick := func() (k int) {
		if li < n && (ni >= len(cnts) || cnts[li] <= cnts[ni]) {
			k, li = li, li+1
		} else {
			k, ni = ni, ni+1
		}
		return k
	}
	for len(cnts) < cap(cnts) {
		k1, k2 := pick(), pick()
		cnts = append(cnts, cnts[k1]+cnts[k2])
		parent[k1] = len(cnts) - 1
		parent[k2] = len(cnts) - 1
	}

	// Compute leaf depths. A parent always has a larger index than either of
	// its children, so a single backwards pass suffices.
	depths := make([]uint, 2*n-1)
	for i := 2*n - 3; i >= 0; i-- {
		depths[i] = depths[parent[i]] + 1
	}

	// Histogram the depths, clamping any that exceed maxBits.
	bitCnts := make([]uint, maxBits+1)
	for _, d := range depths[:n] {
		if d > maxBits {
			d = maxBits
		}
		bitCnts[d]++
	}

	// Clamping raises the Kraft sum above one. Rebalance by repeatedly
	// splitting the deepest available shorter code into two children, moving
	// one clamped code up alongside it as the sibling. Each move lowers the
	// sum by exactly one unit of 2^-maxBits, so iterate on the measured
	// excess until equality holds again.
	var kraft uint64
	for bits := uint(1); bits <= maxBits; bits++ {
		kraft += uint64(bitCnts[bits]) << (maxBits - bits)
	}
	for kraft > 1<<maxBits {
		bits := maxBits - 1
		for bitCnts[bits] == 0 {
			bits--
		}
		bitCnts[bits]--
		bitCnts[bits+1] += 2
		bitCnts[maxBits]--
		kraft--
	}

	// Assign lengths back to the symbols. The least frequent symbols receive
	// the longest codes, keeping the assignment deterministic.
	i := 0
	for bits := maxBits; bits > 0; bits-- {
		for j := uint(0); j < bitCnts[bits]; j++ {
			codes[i].Len = uint32(bits)
			i++
		}
	}
	return nil
}

// GeneratePrefixes assigns canonical code values to all codes with a non-zero
// bit-length, following RFC 1951 section 3.2.2: codes are numbered in
// ascending order first by length, then by symbol, starting at zero for the
// shortest length. The input codes must be sorted in ascending order by
// symbol and must form a complete prefix tree; an under- or over-subscribed
// set of lengths is rejected.
//
// A degenerate list with a single code is permitted, since some formats
// transmit one; callers that cannot tolerate an incomplete tree must pad the
// list before building a decoder table.
func GeneratePrefixes(codes PrefixCodes) error {
	if len(codes) <= 1 {
		if len(codes) == 1 {
			if codes[0].Len >= 1<<CountBits {
				return errDegenerate
			}
			codes[0].Val = 0
		}
		return nil
	}

	// Compute basic statistics and validate the symbol ordering.
	var bitCnts [1 << CountBits]uint
	var minBits, maxBits uint32 = ValueBits + 1, 0
	for i, c := range codes {
		if c.Len == 0 || c.Len > ValueBits {
			return errLength
		}
		if i > 0 {
			switch {
			case codes[i-1].Sym > c.Sym:
				return errSorted
			case codes[i-1].Sym == c.Sym:
				return errUnique
			}
		}
		if minBits > c.Len {
			minBits = c.Len
		}
		if maxBits < c.Len {
			maxBits = c.Len
		}
		bitCnts[c.Len]++
	}

	// Compute the first code value for each bit-length.
	var nextCodes [1 << CountBits]uint32
	var code uint32
	for i := minBits; i <= maxBits; i++ {
		code <<= 1
		nextCodes[i] = code
		code += uint32(bitCnts[i])
	}
	if code != 1<<maxBits {
		return errSubscribed
	}

	// Assign an ascending code per length to each symbol in order. Since the
	// symbols are sorted, this is exactly the canonical assignment.
	for i := range codes {
		c := &codes[i]
		c.Val = internal.ReverseUint32N(nextCodes[c.Len], uint(c.Len))
		nextCodes[c.Len]++
	}
	return nil
}

// RangeCode represents a range of values mapped to a single symbol: the
// symbol selects the Base, and Len extra bits read directly from the stream
// are added to it.
type RangeCode struct {
	Base uint32 // Starting base offset of the range
	Len  uint32 // Bit-width of a subsequent integer to add to base offset
}

// RangeCodes is a list of range codes.
type RangeCodes []RangeCode

// End reports the non-inclusive ending offset of the range.
func (rc RangeCode) End() uint32 { return rc.Base + (1 << rc.Len) }

// Base reports the inclusive starting offset of the first range.
func (rcs RangeCodes) Base() uint32 { return rcs[0].Base }

// End reports the non-inclusive ending offset of the last range.
func (rcs RangeCodes) End() uint32 { return rcs[len(rcs)-1].End() }

// checkValid reports whether the ranges are in ascending order and contiguous
// (forward overlap between adjacent ranges is permitted).
func (rcs RangeCodes) checkValid() bool {
	if len(rcs) == 0 {
		return false
	}
	pre := rcs[0]
	for _, cur := range rcs[1:] {
		switch {
		case cur.Base <= pre.Base:
			return false
		case cur.Base > pre.End():
			return false
		case cur.End() < pre.End():
			return false
		}
		pre = cur
	}
	return true
}

// MakeRangeCodes creates a RangeCodes, where each region is assigned a
// bit-width as given in bits, with the first region starting at minBase.
func MakeRangeCodes(minBase uint, bits []uint) (rc RangeCodes) {
	for _, nb := range bits {
		rc = append(rc, RangeCode{Base: uint32(minBase), Len: uint32(nb)})
		minBase += 1 << nb
	}
	return rc
}
