package testutil

// Permutations calls fn once for every permutation of items.
//
// Ordering scenarios must produce the same result no matter which order
// constraints were added in, so tests replay the same constraint set in
// every possible insertion order. Uses Heap's algorithm; the slice passed
// to fn is reused between calls and must not be retained.
//
// Factorial growth makes this practical only for small sets; the ordering
// scenarios use at most 6 constraints (720 permutations).
func Permutations[T any](items []T, fn func([]T)) {
	work := make([]T, len(items))
	copy(work, items)
	permute(work, len(work), fn)
}

func permute[T any](items []T, k int, fn func([]T)) {
	if k <= 1 {
		fn(items)
		return
	}
	for i := 0; i < k; i++ {
		permute(items, k-1, fn)
		if k%2 == 0 {
			items[i], items[k-1] = items[k-1], items[i]
		} else {
			items[0], items[k-1] = items[k-1], items[0]
		}
	}
}
