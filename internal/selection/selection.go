// Package selection provides expected-linear-time partial selection,
// used to pick the top-K candidates per time step without a full sort.
package selection

// TopK rearranges ids so that the k elements ranking first under less
// occupy ids[:k], in unspecified order. less(a, b) reports whether element
// a ranks strictly before element b. Runs in expected O(len(ids)) via
// quickselect with median-of-three pivoting.
func TopK(ids []int, k int, less func(a, b int) bool) {
	if k <= 0 || k >= len(ids) {
		return
	}
	lo, hi := 0, len(ids)-1
	for lo < hi {
		p := partition(ids, lo, hi, less)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition picks a median-of-three pivot, moves everything ranking before
// it to the left, and returns the pivot's final position.
func partition(ids []int, lo, hi int, less func(a, b int) bool) int {
	mid := lo + (hi-lo)/2
	if less(ids[mid], ids[lo]) {
		ids[lo], ids[mid] = ids[mid], ids[lo]
	}
	if less(ids[hi], ids[lo]) {
		ids[lo], ids[hi] = ids[hi], ids[lo]
	}
	if less(ids[hi], ids[mid]) {
		ids[mid], ids[hi] = ids[hi], ids[mid]
	}
	pivot := ids[mid]
	ids[mid], ids[hi-1] = ids[hi-1], ids[mid]

	i := lo
	for j := lo; j < hi-1; j++ {
		if less(ids[j], pivot) {
			ids[i], ids[j] = ids[j], ids[i]
			i++
		}
	}
	ids[i], ids[hi-1] = ids[hi-1], ids[i]
	return i
}
