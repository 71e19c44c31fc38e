// Package combin maps symmetric multi-indices onto linear storage slots.
//
// A combination of order m over N species is a non-decreasing tuple
// (s_1 <= s_2 <= ... <= s_m) with every s_i in [0, N). Any permutation of a
// tuple addresses the same slot, so only C(N+m-1, m) slots exist per order:
//
//	combin.Count(3, 2)          // 6
//	combin.Index(3, []int{2, 0}) // same slot as {0, 2}
//
// Tuples are enumerated in lexicographic order and [Index] returns the
// position of a tuple in that enumeration.
package combin
