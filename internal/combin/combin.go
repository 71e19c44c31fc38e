package combin

import (
	"fmt"
	"iter"
	"slices"
)

// MaxOrder is the highest combination order tracked by the analysis.
const MaxOrder = 4

// IndexError reports a species index outside [0, N), or a tuple whose order
// is not tracked. It is raised as a panic because N is validated once at
// setup and every caller derives its tuples from that N.
type IndexError struct {
	N     int
	Tuple []int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("combin: tuple %v not tracked for %d species", e.Tuple, e.N)
}

// Binomial returns n choose k, or 0 when k is outside [0, n].
func Binomial(n, k int) int {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}

// Count returns the number of non-decreasing tuples of the given order over n
// species, C(n+order-1, order).
func Count(n, order int) int {
	if order == 0 {
		return 1
	}
	if n <= 0 || order < 0 {
		return 0
	}
	return Binomial(n+order-1, order)
}

// Canonical returns a sorted copy of t.
func Canonical(t []int) []int {
	c := slices.Clone(t)
	slices.Sort(c)
	return c
}

// Index returns the storage slot of t among the tuples of order len(t) over n
// species. The tuple is canonicalized first, so every permutation maps to the
// same slot.
func Index(n int, t []int) int {
	c := t
	if !slices.IsSorted(t) {
		c = Canonical(t)
	}
	for _, s := range c {
		if s < 0 || s >= n {
			panic(&IndexError{N: n, Tuple: slices.Clone(t)})
		}
	}

	m := len(c)
	rank := 0
	prev := 0
	for i, s := range c {
		// tuples sharing the prefix c[:i] but with a smaller value at i
		for v := prev; v < s; v++ {
			rank += Count(n-v, m-1-i)
		}
		prev = s
	}
	return rank
}

// Tuples yields every canonical tuple of the given order over n species in
// lexicographic order, paired with its slot. Each yielded slice is a fresh
// copy owned by the caller. The sequence can be ranged over repeatedly.
func Tuples(n, order int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		if order <= 0 || n <= 0 {
			return
		}
		t := make([]int, order)
		for idx := 0; ; idx++ {
			if !yield(idx, slices.Clone(t)) {
				return
			}
			// advance: bump the right-most position that can still grow and
			// reset everything after it to the same value
			i := order - 1
			for i >= 0 && t[i] == n-1 {
				i--
			}
			if i < 0 {
				return
			}
			t[i]++
			for j := i + 1; j < order; j++ {
				t[j] = t[i]
			}
		}
	}
}

// Run is a maximal block of equal species indices inside a canonical tuple.
type Run struct {
	Species int
	Len     int
}

// Runs groups a canonical tuple into runs of equal species.
func Runs(t []int) []Run {
	runs := make([]Run, 0, len(t))
	for _, s := range t {
		if n := len(runs); n > 0 && runs[n-1].Species == s {
			runs[n-1].Len++
			continue
		}
		runs = append(runs, Run{Species: s, Len: 1})
	}
	return runs
}
