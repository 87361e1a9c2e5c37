// Copyright (c) 2026 lmsg contributors
// Licensed under the MIT License. See LICENSE file in the project root for details.
package lmsg

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule is the right-hand side of a single grammar production: a sequence
// of symbol ids. Terminal ids occupy [0,256) and are raw byte values (0
// is the sentinel/separator); non-terminal ids occupy [256, 256+k) where
// id 256+k refers to the grammar's k-th rule.
type Rule []uint32

// Grammar is an ordered straight-line grammar: every rule but the last
// is a production referenced by some non-terminal id; the last rule is
// the start rule, the residual sequence left once the outer loop reaches
// a fixed point.
type Grammar struct {
	Rules []Rule
}

const terminalBound = 256

// CompressBytes builds an LMS-based straight-line grammar for input. The
// input must not contain a zero byte; CompressBytes appends the 0
// sentinel internally.
func CompressBytes(input []byte) (Grammar, error) {
	if err := checkNoZeroByte(input); err != nil {
		return Grammar{}, err
	}
	return compress(input)
}

// CompressStrings builds an LMS-based straight-line grammar over the
// concatenation of inputs, each separated by a 0 byte, with one final 0
// sentinel appended. No individual input may itself contain a zero byte.
func CompressStrings(inputs [][]byte) (Grammar, error) {
	var buf []byte
	for _, in := range inputs {
		if err := checkNoZeroByte(in); err != nil {
			return Grammar{}, err
		}
		buf = append(buf, in...)
		buf = append(buf, 0)
	}
	if len(inputs) == 0 {
		return compress(nil)
	}
	// compress() appends its own trailing sentinel; buf already ends in
	// one separator per input, so drop the last one to avoid a doubled
	// sentinel and let compress add the canonical final 0.
	buf = buf[:len(buf)-1]
	return compress(buf)
}

func checkNoZeroByte(b []byte) error {
	for i, v := range b {
		if v == 0 {
			return fmt.Errorf("lmsg: input contains an interior zero byte at offset %d", i)
		}
	}
	return nil
}

// compress runs the outer grammar-construction loop over input (with the
// 0 sentinel appended internally) until a fixed point: each iteration
// sorts LMS positions, emits a rule for every distinct LMS substring, and
// rewrites S into a freshly allocated vector (not in place) until no new
// rules are produced.
//
// The first iteration runs the kernel directly over a []byte-backed
// sequence; every later iteration runs over a *PackedVector widened to
// hold the growing rule-id alphabet. Both satisfy the same sequence
// contract, so classify/buildBucketIndex/induceSortLMS never need to know
// which one they were handed.
func compress(input []byte) (Grammar, error) {
	withSentinel := make([]byte, len(input)+1)
	copy(withSentinel, input)

	var s sequence = byteSequence(withSentinel)
	currentBits := uint(8)

	var rules []Rule
	for {
		rulesBefore := len(rules)
		sigma := terminalBound + rulesBefore

		t := classify(s)
		bi := buildBucketIndex(s, sigma)
		a := induceSortLMS(s, t, bi)
		// The rank0-2 offset in rewrite relies on the sentinel-only LMS
		// substring sorting first.
		if a.Len() > 0 && int(a.Get(0)) != s.Len()-1 {
			panic("lmsg: sentinel LMS substring does not sort first")
		}

		ends := substringEnds(t, a)
		eq := equalityBitmap(s, a, ends)

		newRules := emitRules(s, a, ends, eq)
		rules = append(rules, newRules...)
		k := len(newRules)
		if k == 0 {
			rules = append(rules, snapshot(s))
			break
		}

		var newS *PackedVector
		newS, currentBits = rewrite(s, a, eq, rules, rulesBefore, sigma, k, currentBits)
		s = newS
	}
	return Grammar{Rules: rules}, nil
}

// substringEnds computes, for each LMS position in a (in its given
// order), the exclusive end of its LMS substring: one past the next LMS
// position (substrings include both endpoints), or the sequence length
// for the last one.
func substringEnds(t *Bitmap, a *PackedVector) []int {
	ends := make([]int, a.Len())
	for i := 0; i < a.Len(); i++ {
		p := int(a.Get(i))
		if next, ok := nextLMS(t, p); ok {
			ends[i] = next + 1
		} else {
			ends[i] = t.Len()
		}
	}
	return ends
}

// equalityBitmap builds Eq: Eq[0] = 0, and for i >= 1, Eq[i] = 1 iff the
// i-th and (i-1)-th LMS substrings (in a's order) are equal sequences.
func equalityBitmap(s sequence, a *PackedVector, ends []int) *Bitmap {
	m := a.Len()
	eq := NewBitmap(m)
	for i := 1; i < m; i++ {
		p0, p1 := int(a.Get(i-1)), int(a.Get(i))
		l0, l1 := ends[i-1]-p0, ends[i]-p1
		same := l0 == l1
		if same {
			for d := 0; d < l0; d++ {
				if s.Get(p0+d) != s.Get(p1+d) {
					same = false
					break
				}
			}
		}
		eq.Set(i, same)
	}
	return eq
}

// emitRules walks a in sorted-suffix order, grouping contiguous runs of
// equal LMS substrings and appending one new rule per distinct,
// non-empty substring.
func emitRules(s sequence, a *PackedVector, ends []int, eq *Bitmap) []Rule {
	m := a.Len()
	var out []Rule
	i := 0
	for i < m {
		j := i
		for j < m-1 && eq.Get(j+1) {
			j++
		}
		start := int(a.Get(i))
		end := ends[i] - 1 // omit the overlapping last symbol
		if start < end {
			rhs := make(Rule, 0, end-start)
			for p := start; p < end; p++ {
				rhs = append(rhs, uint32(s.Get(p)))
			}
			out = append(out, rhs)
		}
		i = j + 1
	}
	return out
}

// rewrite replaces each LMS substring in s with the symbol id of the rule
// it matches, copying every other symbol through unchanged, and appends
// the trailing sentinel. rules already includes the k rules emitted this
// iteration (rules[rulesBefore:]).
func rewrite(s sequence, a *PackedVector, eq *Bitmap, rules []Rule, rulesBefore, sigma, k int, currentBits uint) (*PackedVector, uint) {
	n := s.Len()

	posInvalidBits := bitWidth(uint64(a.Len())) + 1
	posInvalid := lowMask(posInvalidBits)
	posOfLMS := NewFilledPackedVector(posInvalidBits, n, posInvalid)
	for j := 0; j < a.Len(); j++ {
		posOfLMS.Set(int(a.Get(j)), uint64(j))
	}

	rankEq := NewRankIndex(eq)

	requiredBits := bitWidth(uint64(sigma + k))
	outBits := currentBits
	if requiredBits > outBits {
		outBits = requiredBits
	}
	out := NewPackedVector(outBits, n)

	i := 0
	for i < n-1 {
		pj := posOfLMS.Get(i)
		if pj != posInvalid {
			ruleID := rankEq.Rank0(int(pj)) - 2
			if ruleID < 0 || rulesBefore+ruleID >= len(rules) {
				panic("lmsg: rule id out of range during rewrite")
			}
			out.Push(uint64(terminalBound + rulesBefore + ruleID))
			step := len(rules[rulesBefore+ruleID])
			if step < 1 {
				step = 1
			}
			i += step
		} else {
			out.Push(s.Get(i))
			i++
		}
	}
	out.Push(0)
	return out, outBits
}

func snapshot(s sequence) Rule {
	r := make(Rule, s.Len())
	for i := 0; i < s.Len(); i++ {
		r[i] = uint32(s.Get(i))
	}
	return r
}

// Expand recursively substitutes every non-terminal id 256+k in g's start
// rule with rule k's right-hand side, returning the fully expanded
// terminal sequence (including the trailing 0 sentinel, and any interior
// 0 separators from CompressStrings).
func Expand(g Grammar) []byte {
	if len(g.Rules) == 0 {
		return nil
	}
	var out []byte
	var walk func(Rule)
	walk = func(r Rule) {
		for _, sym := range r {
			if sym < terminalBound {
				out = append(out, byte(sym))
				continue
			}
			k := int(sym) - terminalBound
			if k < 0 || k >= len(g.Rules)-1 {
				panic("lmsg: non-terminal id out of range during expansion")
			}
			walk(g.Rules[k])
		}
	}
	walk(g.Rules[len(g.Rules)-1])
	return out
}

// Bytes returns Expand(g) with the single trailing sentinel byte
// appended by CompressBytes trimmed off.
func (g Grammar) Bytes() []byte {
	b := Expand(g)
	if len(b) == 0 {
		return b
	}
	return b[:len(b)-1]
}

// Strings splits Expand(g) on 0 bytes, recovering the original inputs to
// CompressStrings (the final empty segment after the trailing sentinel
// is dropped).
func (g Grammar) Strings() [][]byte {
	b := Expand(g)
	var out [][]byte
	start := 0
	for i, v := range b {
		if v == 0 {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	return out
}

// Stats summarizes a built grammar: rule count, total right-hand-side
// symbol count across every rule, and the length of the original
// (sentinel-appended) input.
type Stats struct {
	RuleCount   int
	SymbolCount int
	InputLength int
}

// Stats computes summary statistics over g; InputLength is obtained by
// expanding g.
func (g Grammar) Stats() Stats {
	st := Stats{RuleCount: len(g.Rules)}
	for _, r := range g.Rules {
		st.SymbolCount += len(r)
	}
	st.InputLength = len(Expand(g))
	return st
}

// String renders every rule as "Rk -> sym sym ...", terminals shown as
// their byte value (0 shown as "\0") and non-terminals as "Rj".
func (g Grammar) String() string {
	var b strings.Builder
	for i, r := range g.Rules {
		fmt.Fprintf(&b, "R%d ->", i)
		for _, sym := range r {
			b.WriteByte(' ')
			if sym < terminalBound {
				if sym == 0 {
					b.WriteString("\\0")
				} else {
					b.WriteString(strconv.Itoa(int(sym)))
				}
				continue
			}
			fmt.Fprintf(&b, "R%d", sym-terminalBound)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
