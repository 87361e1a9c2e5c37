// Copyright (c) 2026 lmsg contributors
// Licensed under the MIT License. See LICENSE file in the project root for details.
package lmsg

// induceSortLMS sorts the LMS positions of s by the lexicographic order
// of the suffixes they start, using an induced-suffix-sort restricted to
// LMS output only (no recursion into a summary string). It returns a
// packed array of the LMS positions in sorted-suffix order.
//
// Preconditions (not checked here; only an empty s panics): s ends with
// the sentinel 0 and no element of s is smaller (other 0s may occur as
// separators), t is the L/S map produced by classify(s), and bi is the
// bucket index built over the same s and an alphabet bound covering
// every element of s. bi's bs and be arrays are consumed by the call.
func induceSortLMS(s sequence, t *Bitmap, bi *bucketIndex) *PackedVector {
	n := s.Len()
	if n == 0 {
		panic("lmsg: cannot induce-sort an empty sequence")
	}

	// w' reserves one extra code above every representable position for
	// the "invalid" sentinel; in practice this floors at the machine word
	// width (64) for any input short of 2^63 elements, so W is effectively
	// unpacked, but it is still built as a PackedVector so the same
	// storage abstraction serves every kernel array.
	wPrime := uint(64)
	if req := bitWidth(uint64(n)) + 1; req > wPrime {
		wPrime = req
	}
	invalid := lowMask(wPrime)
	if wPrime >= 64 {
		invalid = ^uint64(0)
	}

	w := NewFilledPackedVector(wPrime, n, invalid)

	lms := lmsPositions(t)

	// Phase 0: place LMS positions at the tails of their buckets, in
	// reverse position order. The final sentinel's suffix is the smallest
	// suffix of s, so it always takes slot 0 instead; any other 0s
	// (CompressStrings separators) fill bucket 0 from its tail down to
	// slot 1.
	beScratch := bi.be.Clone()
	for i := len(lms) - 1; i >= 0; i-- {
		p := lms[i]
		if p == n-1 {
			w.Set(0, uint64(p))
			continue
		}
		c := int(s.Get(p))
		cp := bi.posOf(c)
		idx := int(beScratch.Get(cp)) - 1
		w.Set(idx, uint64(p))
		beScratch.Set(cp, uint64(idx))
	}

	// Phase A: induce L-positions left to right. bi.bs is consumed
	// (mutated) here.
	for r := 0; r < w.Len(); r++ {
		wr := w.Get(r)
		if wr == invalid || wr == 0 {
			continue
		}
		p := int(wr) - 1
		if isL(t, p) {
			c := int(s.Get(p))
			cp := bi.posOf(c)
			idx := int(bi.bs.Get(cp))
			w.Set(idx, uint64(p))
			bi.bs.Set(cp, uint64(idx+1))
		}
	}

	// Phase B: induce S-positions right to left, using the original
	// (untouched-until-now) be.
	for r := w.Len() - 1; r >= 0; r-- {
		wr := w.Get(r)
		// Phase B need not check invalid in the general case, since every
		// slot still invalid after Phase A lies in an S-region that Phase B
		// fills before its right-to-left scan reaches it. The degenerate
		// single-element sequence (no LMS positions at all) never gets a
		// Phase-0 seed, though, so this defensive check is required to
		// avoid reading a never-written slot.
		if wr == invalid || wr == 0 {
			continue
		}
		p := int(wr) - 1
		if isS(t, p) {
			c := int(s.Get(p))
			cp := bi.posOf(c)
			idx := int(bi.be.Get(cp)) - 1
			w.Set(idx, uint64(p))
			bi.be.Set(cp, uint64(idx))
		}
	}

	out := NewPackedVector(bitWidth(uint64(n)), len(lms))
	for r := 0; r < w.Len(); r++ {
		wr := w.Get(r)
		if wr == invalid {
			continue
		}
		p := int(wr)
		if isLMS(t, p) {
			out.Push(uint64(p))
		}
	}
	return out
}
