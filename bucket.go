// Copyright (c) 2026 lmsg contributors
// Licensed under the MIT License. See LICENSE file in the project root for details.
package lmsg

// bucketIndex is the transient, per-call sparse bucket lookup structure: a
// rank-1 bitmap over "symbols that occur" in s, plus packed bucket
// start/end offsets for only those symbols, indexed by
// rank1(present, c) - 1.
type bucketIndex struct {
	present *Bitmap
	rank    *RankIndex
	bs, be  *PackedVector
}

// buildBucketIndex computes the bucket index for s over alphabet bound
// sigma (every element of s must lie in [0, sigma)).
func buildBucketIndex(s sequence, sigma int) *bucketIndex {
	n := s.Len()
	sizes := make([]int, sigma)
	present := NewBitmap(sigma)
	for i := 0; i < n; i++ {
		c := int(s.Get(i))
		if c < 0 || c >= sigma {
			panic("lmsg: symbol out of alphabet range")
		}
		sizes[c]++
		present.Set(c, true)
	}
	rank := NewRankIndex(present)

	occurring := 0
	for _, sz := range sizes {
		if sz > 0 {
			occurring++
		}
	}
	w := bitWidth(uint64(n + 1))
	bs := NewPackedVector(w, occurring)
	be := NewPackedVector(w, occurring)
	var prefix int
	for c := 0; c < sigma; c++ {
		if sizes[c] == 0 {
			continue
		}
		bs.Push(uint64(prefix))
		prefix += sizes[c]
		be.Push(uint64(prefix))
	}
	return &bucketIndex{present: present, rank: rank, bs: bs, be: be}
}

// posOf returns the compressed bucket index for symbol c, i.e.
// rank1(present, c) - 1. c must occur in the sequence the index was built
// from.
func (bi *bucketIndex) posOf(c int) int {
	return bi.rank.Rank1(c) - 1
}
