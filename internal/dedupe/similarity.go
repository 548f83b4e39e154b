package dedupe

// Ratio is a symmetric similarity measure over two strings based on the
// longest common subsequence of their runes:
//
//	ratio = 2*lcs(a, b) / (len(a) + len(b))
//
// It is 1 for identical strings and 0 for fully disjoint ones, and is
// monotone in the amount of shared text, which is all the duplicate
// threshold contract requires.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	// Single-row LCS table; titles are short so O(n*m) is fine.
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
