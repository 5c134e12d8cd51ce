package attribute

// Vote returns the most frequent candidate inside [lo, hi]. Ties go to the
// value that appeared first. ok is false when no candidate is in range.
func Vote(candidates []int, lo, hi int) (value int, ok bool) {
	counts := make(map[int]int, len(candidates))
	best, bestCount := 0, 0
	for _, c := range candidates {
		if c < lo || c > hi {
			continue
		}
		counts[c]++
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, bestCount > 0
}
