package combin

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCount(t *testing.T) {
	tests := []struct {
		n, order int
		expected int
	}{
		{2, 1, 2},
		{2, 2, 3},
		{2, 3, 4},
		{2, 4, 5},
		{3, 2, 6},
		{3, 3, 10},
		{4, 4, 35},
		{8, 4, 330},
		{5, 0, 1},
		{0, 2, 0},
	}

	for _, tt := range tests {
		if got := Count(tt.n, tt.order); got != tt.expected {
			t.Errorf("Count(%d, %d) = %d, want %d", tt.n, tt.order, got, tt.expected)
		}
	}
}

func TestTuplesLexicographic(t *testing.T) {
	var got [][]int
	for _, tup := range Tuples(3, 2) {
		got = append(got, tup)
	}
	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}, {2, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tuples(3, 2) mismatch (-want +got):\n%s", diff)
	}
}

func TestTuplesMatchIndex(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for m := 1; m <= MaxOrder; m++ {
			seen := make(map[int]bool)
			for idx, tup := range Tuples(n, m) {
				if !slices.IsSorted(tup) {
					t.Fatalf("n=%d m=%d: tuple %v not canonical", n, m, tup)
				}
				if got := Index(n, tup); got != idx {
					t.Fatalf("n=%d m=%d: Index(%v) = %d, enumerated at %d", n, m, tup, got, idx)
				}
				seen[idx] = true
			}
			if len(seen) != Count(n, m) {
				t.Errorf("n=%d m=%d: enumerated %d distinct tuples, want %d", n, m, len(seen), Count(n, m))
			}
		}
	}
}

func TestTuplesRestartable(t *testing.T) {
	seq := Tuples(4, 3)
	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != second || first != Count(4, 3) {
		t.Errorf("expected two full passes of %d, got %d and %d", Count(4, 3), first, second)
	}
}

func TestIndexPermutationInvariant(t *testing.T) {
	tests := [][]int{
		{2, 0},
		{1, 3, 0},
		{3, 1, 1, 0},
		{2, 2, 0, 2},
	}

	for _, tup := range tests {
		want := Index(4, Canonical(tup))
		perm := slices.Clone(tup)
		for i := 0; i < len(perm); i++ {
			// rotate through every position
			perm = append(perm[1:], perm[0])
			if got := Index(4, perm); got != want {
				t.Errorf("Index(%v) = %d, want %d (canonical %v)", perm, got, want, Canonical(tup))
			}
		}
		rev := slices.Clone(tup)
		slices.Reverse(rev)
		if got := Index(4, rev); got != want {
			t.Errorf("Index(%v) = %d, want %d", rev, got, want)
		}
	}
}

func TestIndexOutOfRangePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for out-of-range species")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected error panic, got %T", r)
		}
		var ie *IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("expected *IndexError, got %v", err)
		}
		if ie.N != 2 {
			t.Errorf("expected N=2, got %d", ie.N)
		}
	}()
	Index(2, []int{0, 2})
}

func TestRuns(t *testing.T) {
	got := Runs([]int{0, 0, 1, 3, 3, 3})
	want := []Run{{0, 2}, {1, 1}, {3, 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Runs mismatch (-want +got):\n%s", diff)
	}
}

func TestTable(t *testing.T) {
	tb := NewTable(3, 4)
	if tb.MaxOrder() != 4 {
		t.Errorf("expected max order 4, got %d", tb.MaxOrder())
	}
	for m := 1; m <= 4; m++ {
		if len(tb.Tuples(m)) != Count(3, m) {
			t.Errorf("order %d: expected %d tuples, got %d", m, Count(3, m), len(tb.Tuples(m)))
		}
	}
	if tb.Index(2, 1, 0) != tb.Index(0, 1, 2) {
		t.Error("table index should be permutation invariant")
	}

	pairs := NewTable(2, 2)
	if pairs.MaxOrder() != 2 {
		t.Errorf("expected max order 2, got %d", pairs.MaxOrder())
	}
	if pairs.Tuples(3) != nil {
		t.Error("expected no order-3 tuples in a pair-only table")
	}
}
